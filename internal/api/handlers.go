package api

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"datasight/adapters/ingest"
	"datasight/ai"
	"datasight/internal/correlate"
	"datasight/internal/errors"
	"datasight/internal/profiling"
	"datasight/internal/session"
	"datasight/internal/viz"
)

// uploadStats merges the dataset profile with file bookkeeping in one
// flat JSON object
type uploadStats struct {
	*profiling.DatasetProfile
	ingest.FileInfo
}

type uploadResponse struct {
	Status         string                   `json:"status"`
	DatasetID      string                   `json:"dataset_id"`
	Data           []map[string]interface{} `json:"data"`
	Stats          uploadStats              `json:"stats"`
	Visualizations []viz.Spec               `json:"visualizations"`
}

type askRequest struct {
	Question string      `json:"question"`
	Model    string      `json:"model"`
	Context  *ai.Context `json:"context,omitempty"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Data Analysis Platform API is running"})
}

// handleUpload ingests a data file, profiles it, plans its charts and
// stores the result in the single analysis slot.
func (s *Server) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, errors.InvalidInput("No file provided"))
		return
	}
	if s.upload.MaxBytes > 0 && fileHeader.Size > s.upload.MaxBytes {
		respondError(c, errors.InvalidInput("File exceeds the upload size limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, errors.Processing("Error processing file", err))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		respondError(c, errors.Processing("Error processing file", err))
		return
	}

	g, info, err := ingest.Read(content, fileHeader.Filename)
	if err != nil {
		respondError(c, err)
		return
	}

	// Profiler and planner both read the immutable grid, so they can
	// run side by side. The planner waits on the profiler's
	// correlation ranking only.
	var (
		profile *profiling.DatasetProfile
		charts  []viz.Spec
	)
	group, _ := errgroup.WithContext(c.Request.Context())
	ranked := make(chan []profiling.PairCorrelation, 1)
	group.Go(func() error {
		profile = profiling.ProfileDataset(g)
		ranked <- profile.Correlations
		return nil
	})
	group.Go(func() error {
		charts = viz.Plan(g, <-ranked)
		return nil
	})
	if err := group.Wait(); err != nil {
		respondError(c, errors.Processing("Error processing file", err))
		return
	}

	analysis := session.NewAnalysis(g, info, profile, charts)
	s.slot.Store(analysis)
	log.Printf("[api] dataset %s loaded: %s (%d rows, %d columns)",
		analysis.ID, info.FileName, g.RowCount(), g.ColumnCount())

	c.JSON(http.StatusOK, uploadResponse{
		Status:         "success",
		DatasetID:      analysis.ID.String(),
		Data:           g.Records(),
		Stats:          uploadStats{profile, info},
		Visualizations: charts,
	})
}

// handleAsk forwards a question about the loaded dataset to the answer
// service. Remote failures still produce a 200-shaped answer payload.
func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("Invalid request body"))
		return
	}
	if req.Question == "" {
		respondError(c, errors.InvalidInput("Question is required"))
		return
	}

	analysis, ok := s.slot.Current()
	if !ok {
		respondError(c, errors.NoDataset())
		return
	}

	response := s.ai.Answer(c.Request.Context(), req.Question, req.Model, analysis.Grid, req.Context)
	c.JSON(http.StatusOK, response)
}

func (s *Server) handleColumnStats(c *gin.Context) {
	analysis, ok := s.slot.Current()
	if !ok {
		respondError(c, errors.NoDataset())
		return
	}

	profile, err := profiling.ProfileColumn(analysis.Grid, c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleCorrelation(c *gin.Context) {
	col1 := c.Query("column1")
	col2 := c.Query("column2")
	if col1 == "" || col2 == "" {
		respondError(c, errors.InvalidInput("column1 and column2 are required"))
		return
	}

	analysis, ok := s.slot.Current()
	if !ok {
		respondError(c, errors.NoDataset())
		return
	}

	result, err := correlate.Correlate(analysis.Grid, col1, col2)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
