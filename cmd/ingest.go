package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"agreement-radar/logic/ingestion/loaders"
	"agreement-radar/service"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.pdf>",
	Short: "Run one document through the ingestion pipeline and print the agreement",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	file, err := loaders.NewFileLoader(afero.NewOsFs()).Load(cmd.Context(), loaders.Source{URI: args[0]})
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	agreement, err := a.svc.Upload(cmd.Context(), file.Name, file.Data)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			for _, issue := range verr.Issues {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", issue.Field, issue.Message)
			}
		}
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(agreement)
}
