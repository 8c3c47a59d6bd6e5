package http

import (
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maheshsundaram/gemini-voice-input/internal/config"
	"github.com/maheshsundaram/gemini-voice-input/internal/domain"
	"github.com/maheshsundaram/gemini-voice-input/internal/metrics"
	"github.com/maheshsundaram/gemini-voice-input/internal/services"
)

type API struct {
	cfg     config.Config
	gemini  *services.GeminiClient // nil when no server default credential
	metrics *metrics.Metrics
}

func NewAPI(cfg config.Config, gemini *services.GeminiClient, m *metrics.Metrics) *API {
	return &API{cfg: cfg, gemini: gemini, metrics: m}
}

func registerRoutes(r *gin.Engine, api *API) {
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", api.handleHealth)
		apiGroup.POST("/transcribe", api.handleTranscribe)
	}

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(api.metrics.Registry, promhttp.HandlerOpts{})))
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (a *API) handleTranscribe(c *gin.Context) {
	start := time.Now()
	a.metrics.TranscribeRequests.Inc()
	defer func() {
		a.metrics.TranscribeDuration.Observe(time.Since(start).Seconds())
	}()

	fileHeader, err := c.FormFile("audio_file")
	if err != nil {
		a.metrics.TranscribeFailures.WithLabelValues(metrics.ReasonValidation).Inc()
		respondMessage(c, http.StatusBadRequest, "missing audio file")
		return
	}

	// Credential resolution: caller-supplied token wins, server default is
	// the fallback, no credential at all is a configuration error.
	gemini := a.gemini
	if token := strings.TrimSpace(c.PostForm("gemini_api_token")); token != "" {
		gemini, err = services.NewGeminiClient(token, a.cfg.GeminiModel, a.cfg.GeminiBaseURL)
		if err != nil {
			a.metrics.TranscribeFailures.WithLabelValues(metrics.ReasonCredential).Inc()
			respondDetails(c, http.StatusBadRequest, "invalid API token", err.Error())
			return
		}
	}

	if gemini == nil {
		a.metrics.TranscribeFailures.WithLabelValues(metrics.ReasonConfig).Inc()
		respondMessage(c, http.StatusInternalServerError, "no API credential configured")
		return
	}

	upload, err := fileHeader.Open()
	if err != nil {
		a.metrics.TranscribeFailures.WithLabelValues(metrics.ReasonValidation).Inc()
		respondDetails(c, http.StatusInternalServerError, "unable to read uploaded file", err.Error())
		return
	}
	defer upload.Close()

	data, err := io.ReadAll(upload)
	if err != nil {
		a.metrics.TranscribeFailures.WithLabelValues(metrics.ReasonValidation).Inc()
		respondDetails(c, http.StatusInternalServerError, "unable to read uploaded file", err.Error())
		return
	}
	a.metrics.UploadBytes.Observe(float64(len(data)))

	artifact := domain.AudioArtifact{Bytes: data, MIMEType: domain.AudioMIMEType}

	text, err := gemini.Transcribe(c.Request.Context(), artifact)
	if err != nil {
		log.Printf("%s transcription failed: %v", c.GetString("request_id"), err)
		a.metrics.TranscribeFailures.WithLabelValues(metrics.ReasonUpstream).Inc()
		respondDetails(c, http.StatusInternalServerError, "transcription failed", err.Error())
		return
	}

	a.metrics.TranscribeSuccesses.Inc()
	c.JSON(http.StatusOK, gin.H{"transcription": text})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func respondDetails(c *gin.Context, status int, message, details string) {
	c.JSON(status, gin.H{"error": message, "details": details})
}
