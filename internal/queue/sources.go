package queue

import (
	"time"

	"beleidsgraaf/internal/importer"
	"beleidsgraaf/internal/util"
	"beleidsgraaf/pkg/tkapi"
)

func newSourceClient(soort string) importer.SourceClient {
	return tkapi.NewClient(tkapi.ClientParams{
		BaseURL:           util.GetEnvString("TK_API_URL", tkapi.DefaultBaseURL),
		Soort:             soort,
		Timeout:           time.Duration(util.GetEnvNumeric("TK_API_TIMEOUT_SECONDS", 30)) * time.Second,
		RequestsPerSecond: util.GetEnvNumeric("TK_API_RPS", 2),
		CacheTTL:          time.Duration(util.GetEnvNumeric("TK_API_CACHE_TTL_SECONDS", 300)) * time.Second,
	})
}
