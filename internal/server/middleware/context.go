package middleware

import (
	"beleidsgraaf/internal/util"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"beleidsgraaf/pkg/ai"
	oai "beleidsgraaf/pkg/ai/ollama"
	gai "beleidsgraaf/pkg/ai/openai"
	"beleidsgraaf/pkg/logger"
)

type AppUser struct {
	UserID      int64
	Role        string
	Permissions []string
}

type App struct {
	DBConn         *pgxpool.Pool
	Queue          *amqp091.Channel
	Key            *keyfunc.Keyfunc
	S3             *s3.Client
	Extractor      *ai.TagExtractor
	MasterAPIKey   string
	MasterUserID   int64
	MasterUserRole string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func NewExtractor() *ai.TagExtractor {
	adapter := util.GetEnv("AI_ADAPTER")
	var client ai.ExtractionAIClient

	switch adapter {
	case "ollama":
		ollamaClient, err := oai.NewExtractOllamaClient(oai.NewExtractOllamaClientParams{
			ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 1)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		client = ollamaClient
	default:
		client = gai.NewExtractOpenAIClient(gai.NewExtractOpenAIClientParams{
			ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),

			ChatURL: util.GetEnv("AI_CHAT_URL"),
			ChatKey: util.GetEnv("AI_CHAT_KEY"),
		})
	}

	return ai.NewTagExtractor(client, ai.TagExtractorParams{
		Model:               util.GetEnv("AI_CHAT_EXTRACT_MODEL"),
		DocumentTokenBudget: int(util.GetEnvNumeric("AI_DOC_TOKEN_BUDGET", ai.DefaultDocumentTokenBudget)),
	})
}

func AppContextMiddleware(
	db *pgxpool.Pool,
	queue *amqp091.Channel,
	key *keyfunc.Keyfunc,
	s3 *s3.Client,
	extractor *ai.TagExtractor,
	masterAPIKey string,
	masterUserID int64,
	masterUserRole string,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			app := &App{
				DBConn:         db,
				Queue:          queue,
				Key:            key,
				S3:             s3,
				Extractor:      extractor,
				MasterAPIKey:   masterAPIKey,
				MasterUserID:   masterUserID,
				MasterUserRole: masterUserRole,
			}
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
