package vars

const (
	// 模型名称
	GPT4O           = "gpt-4o-2024-08-06"
	QWEN7B          = "qwen2.5:7b"
	PROVIDER_OPENAI = "openai"
	PROVIDER_OLLAMA = "ollama"

	// 存储
	UPLOAD_PREFIX   = "uploads"
	DEFAULT_BUCKET  = "agreements"
	DEFAULT_ESINDEX = "agreements_v1"

	// MaxPromptChars bounds the document text sent to the completion service.
	MaxPromptChars = 180000
)

// Field defaults for ExtractedFields. These are the only place defaults are
// declared; the normalizer applies them once and later layers only validate.
const (
	DefaultTermLengthMonths       = 0
	DefaultNoticeDays             = 0
	DefaultRenewalFrequencyMonths = 12
)

// 提示词
var (
	SYSTEM_PROMPT = "You are a contracts extraction assistant. Output ONLY JSON that matches the schema."

	EXTRACT_INSTRUCTIONS = []string{
		"Extract renewal and notice details from this purchase agreement.",
		"Return ONLY a single JSON object with these keys:",
		`  "vendor" (string), "agreementTitle" (string),`,
		`  "effectiveDate" (YYYY-MM-DD or null), "termLengthMonths" (integer),`,
		`  "endDate" (YYYY-MM-DD or null), "autoRenews" (boolean), "noticeDays" (integer),`,
		`  "explicitOptOutDate" (YYYY-MM-DD or null), "renewalFrequencyMonths" (integer).`,
		"If unknown, use null for dates and 0/false for numbers/booleans.",
		"",
		"TEXT:",
	}
)
