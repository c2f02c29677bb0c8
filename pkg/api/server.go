// Package api provides the REST API server for miditok
package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/miniDevOn/MidiTok/pkg/chords"
	"github.com/miniDevOn/MidiTok/pkg/midifile"
	"github.com/miniDevOn/MidiTok/pkg/tokenizer"
)

// @title MidiTok API
// @version 1.0
// @description API for converting MIDI files to token sequences and back
// @host localhost:8080
// @BasePath /api/v1

// StartServer starts the API server on the specified port
func StartServer(port int) error {
	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/tokenize", handleTokenize)
		v1.POST("/detokenize", handleDetokenize)
		v1.GET("/vocab", handleVocab)
		v1.GET("/config", handleConfig)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r.Run(fmt.Sprintf(":%d", port))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// tokenizerFromQuery builds a tokenizer from the default configuration plus
// the optional feature-family query flags.
func tokenizerFromQuery(c *gin.Context) *tokenizer.Tokenizer {
	cfg := tokenizer.DefaultConfig()
	cfg.UseTempo = c.DefaultQuery("tempo", "false") == "true"
	cfg.UseTimeSignature = c.DefaultQuery("timesig", "false") == "true"
	cfg.UseChord = c.DefaultQuery("chords", "false") == "true"

	t := tokenizer.New(cfg)
	if cfg.UseChord {
		t.SetChordDetector(chords.NewDetector())
	}
	return t
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "miditok",
	})
}

// handleConfig godoc
// @Summary Show the default tokenizer configuration
// @Tags info
// @Produce json
// @Success 200 {object} tokenizer.Config
// @Router /api/v1/config [get]
func handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, tokenizer.DefaultConfig())
}

// handleVocab godoc
// @Summary List the token vocabulary
// @Description Returns the full ordered token alphabet for the configuration
// @Tags info
// @Produce json
// @Param tempo query bool false "Enable Tempo tokens"
// @Param timesig query bool false "Enable TimeSig tokens"
// @Param chords query bool false "Enable Chord tokens"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/vocab [get]
func handleVocab(c *gin.Context) {
	vocab := tokenizerFromQuery(c).Vocabulary()
	c.JSON(http.StatusOK, gin.H{
		"size":   len(vocab),
		"tokens": vocab,
	})
}

// handleTokenize godoc
// @Summary Convert a MIDI file to tokens
// @Description Upload a MIDI file and receive the token sequence
// @Tags convert
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file to tokenize"
// @Param tempo query bool false "Enable Tempo tokens"
// @Param timesig query bool false "Enable TimeSig tokens"
// @Param chords query bool false "Enable Chord tokens"
// @Success 200 {object} tokenizer.Sequence
// @Failure 400 {object} map[string]string
// @Router /api/v1/tokenize [post]
func handleTokenize(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	score, err := midifile.Parse(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t := tokenizerFromQuery(c)
	t.Preprocess(score)
	tokens, err := t.Encode(score)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, tokenizer.Sequence{
		TimeDivision: score.TicksPerQuarter,
		Tokens:       tokenizer.TokenStrings(tokens),
	})
}

// handleDetokenize godoc
// @Summary Convert tokens back to a MIDI file
// @Description Post a token sequence and receive the reconstructed MIDI file
// @Tags convert
// @Accept json
// @Produce application/octet-stream
// @Param sequence body tokenizer.Sequence true "Token sequence"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/detokenize [post]
func handleDetokenize(c *gin.Context) {
	var seq tokenizer.Sequence
	if err := c.ShouldBindJSON(&seq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid token sequence"})
		return
	}
	if seq.TimeDivision == 0 {
		seq.TimeDivision = tokenizer.DefaultTimeDivision
	}

	t := tokenizerFromQuery(c)
	score, err := t.DecodeStrings(seq.Tokens, seq.TimeDivision)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := midifile.Generate(score)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=decoded.mid")
	c.Data(http.StatusOK, "audio/midi", data)
}
