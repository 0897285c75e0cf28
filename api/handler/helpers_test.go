package handler_test

import "agreement-radar/config"

func configForTest() config.HTTPConfig {
	return config.HTTPConfig{
		MaxUploadBytes: 1 << 20,
		AllowedOrigins: []string{"http://localhost:3000"},
	}
}
