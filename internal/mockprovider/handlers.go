package mockprovider

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/filswan/go-swan-lib/logs"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lagrangedao/go-compute-client/constants"
	"github.com/lagrangedao/go-compute-client/internal/models"
	"github.com/lagrangedao/go-compute-client/util"
)

const (
	JobStatusStarted  = 10
	JobStatusFinished = 70

	JobStatusTextStarted = "Job started"
	JobStatusTextStopped = "Job stopped"
)

type startRequest struct {
	ConsumerAddress    string                  `json:"consumerAddress"`
	Signature          string                  `json:"signature"`
	Nonce              string                  `json:"nonce"`
	Environment        string                  `json:"environment"`
	Datasets           []models.ComputeAsset   `json:"datasets"`
	Algorithm          models.ComputeAlgorithm `json:"algorithm"`
	AdditionalDatasets *[]models.ComputeAsset  `json:"additionalDatasets,omitempty"`
	Output             *models.ComputeOutput   `json:"output,omitempty"`
}

func (s *Server) getEndpoints(c *gin.Context) {
	c.JSON(http.StatusOK, s.descriptor())
}

func (s *Server) getNonce(c *gin.Context) {
	addr := c.Query("userAddress")
	if strings.TrimSpace(addr) == "" {
		c.JSON(http.StatusBadRequest, util.CreateErrorResponse(util.JsonError, "missing userAddress"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"nonce": s.Nonce(addr)})
}

func (s *Server) startCompute(free bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload startRequest
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, util.CreateErrorResponse(util.JsonError, err.Error()))
			return
		}

		isFreeEnv := strings.Contains(payload.Environment, constants.FreeEnvironmentMarker)
		if free && !isFreeEnv {
			c.JSON(http.StatusBadRequest, util.CreateErrorResponse(util.EnvError, "Paid jobs cannot be started here, use computeStart"))
			return
		}
		if !free && isFreeEnv {
			c.JSON(http.StatusInternalServerError, util.CreateErrorResponse(util.EnvError, "Free Jobs cannot be started here, use startFreeCompute"))
			return
		}
		if len(payload.Datasets) == 0 {
			c.JSON(http.StatusBadRequest, util.CreateErrorResponse(util.JsonError, "missing datasets"))
			return
		}

		nonce, err := strconv.ParseInt(payload.Nonce, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, util.CreateErrorResponse(util.NonceError, "invalid nonce: "+payload.Nonce))
			return
		}

		documentId := payload.Datasets[0].DocumentId
		message := payload.ConsumerAddress + documentId + payload.Nonce
		if !checkSignature(payload.ConsumerAddress, payload.Signature, message) {
			c.JSON(http.StatusUnauthorized, util.CreateErrorResponse(util.SignatureError))
			return
		}
		if !s.useNonce(payload.ConsumerAddress, nonce) {
			c.JSON(http.StatusBadRequest, util.CreateErrorResponse(util.NonceError))
			return
		}

		inputs := []string{documentId}
		if payload.AdditionalDatasets != nil {
			for _, d := range *payload.AdditionalDatasets {
				inputs = append(inputs, d.DocumentId)
			}
		}

		job := &models.ComputeJob{
			Owner:       payload.ConsumerAddress,
			Did:         documentId,
			JobId:       strings.ReplaceAll(uuid.NewString(), "-", ""),
			DateCreated: strconv.FormatInt(time.Now().Unix(), 10),
			Status:      JobStatusStarted,
			StatusText:  JobStatusTextStarted,
			InputDID:    inputs,
			AlgoDID:     payload.Algorithm.DocumentId,
		}

		s.lk.Lock()
		s.jobs[job.JobId] = job
		s.order = append(s.order, job.JobId)
		s.lk.Unlock()

		logs.GetLogger().Infof("mock provider started job %s for %s on %s", job.JobId, job.Owner, payload.Environment)
		c.JSON(http.StatusOK, []models.ComputeJob{*job})
	}
}

func (s *Server) computeStatus(c *gin.Context) {
	consumer := c.Query("consumerAddress")
	if strings.TrimSpace(consumer) == "" {
		c.JSON(http.StatusBadRequest, util.CreateErrorResponse(util.JsonError, "missing consumerAddress"))
		return
	}
	jobId := c.Query("jobId")
	documentId := c.Query("documentId")

	s.lk.Lock()
	jobs := make([]models.ComputeJob, 0)
	for _, id := range s.order {
		job := s.jobs[id]
		if normalize(job.Owner) != normalize(consumer) {
			continue
		}
		if jobId != "" && job.JobId != jobId {
			continue
		}
		if documentId != "" && job.Did != documentId {
			continue
		}
		jobs = append(jobs, *job)
	}
	s.lk.Unlock()

	c.JSON(http.StatusOK, jobs)
}

func (s *Server) stopCompute(c *gin.Context) {
	consumer := c.Query("consumerAddress")
	jobId := c.Query("jobId")
	documentId := c.Query("documentId")

	rawNonce := c.Query("nonce")
	nonce, err := strconv.ParseInt(rawNonce, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, util.CreateErrorResponse(util.NonceError, "invalid nonce: "+rawNonce))
		return
	}

	message := consumer + jobId + documentId + rawNonce
	if !checkSignature(consumer, c.Query("signature"), message) {
		c.JSON(http.StatusUnauthorized, util.CreateErrorResponse(util.SignatureError))
		return
	}
	if !s.useNonce(consumer, nonce) {
		c.JSON(http.StatusBadRequest, util.CreateErrorResponse(util.NonceError))
		return
	}

	s.lk.Lock()
	defer s.lk.Unlock()
	job, ok := s.jobs[jobId]
	if !ok || normalize(job.Owner) != normalize(consumer) {
		c.JSON(http.StatusNotFound, util.CreateErrorResponse(util.JobNotFound))
		return
	}
	job.Status = JobStatusFinished
	job.StatusText = JobStatusTextStopped
	job.DateFinished = strconv.FormatInt(time.Now().Unix(), 10)

	c.JSON(http.StatusOK, []models.ComputeJob{*job})
}
