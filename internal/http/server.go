package http

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/maheshsundaram/gemini-voice-input/internal/config"
	"github.com/maheshsundaram/gemini-voice-input/internal/metrics"
	"github.com/maheshsundaram/gemini-voice-input/internal/services"
)

type Server struct {
	engine *gin.Engine
	cfg    config.Config
}

func NewServer(cfg config.Config) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	// The server default client is optional. Without it every request must
	// carry its own gemini_api_token.
	var gemini *services.GeminiClient
	if cfg.GeminiAPIKey != "" {
		client, err := services.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL)
		if err != nil {
			log.Printf("warning: default gemini client unavailable: %v", err)
		} else {
			gemini = client
		}
	} else {
		log.Printf("warning: GEMINI_API_KEY not set; requests must supply gemini_api_token")
	}

	appMetrics := metrics.NewMetrics()

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(RequestLogger())
	engine.Use(MaxBodySize(cfg.MaxUploadBytes))
	engine.Use(CORS())

	api := NewAPI(cfg, gemini, appMetrics)
	registerRoutes(engine, api)

	return &Server{engine: engine, cfg: cfg}, nil
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	return s.engine.Run(addr)
}
