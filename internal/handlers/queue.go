package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sgupta/personabot/internal/api"
	"github.com/sgupta/personabot/internal/config"
	"github.com/sgupta/personabot/internal/domain/jobmodel"
	"github.com/sgupta/personabot/internal/job"
	"github.com/sgupta/personabot/internal/metrics"
	"github.com/sgupta/personabot/pkg/logging"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logging.Logger
)

type JobHandler struct {
	service *job.Service
}

func InitJobHandler(jobService *job.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService}

		logJH = logging.NewLogger("JobHandler")
		logRH = logging.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})
}

// newJobData keeps request parsing separate from job construction.
type newJobData struct {
	id               string
	chatId           string
	message          string
	isNewChat        bool
	traceId          string
	isDocumentIngest bool
	documentName     string
	documentPath     string
}

func CreateNewJob(newJob newJobData) {
	log := logJH.With("traceId", newJob.traceId, "job id", newJob.id)
	log.Info("To create new job")
	handlerInstance.pushToJobChannel(newJob)
	if newJob.isNewChat {
		log.Info("Create new chat")
		handlerInstance.initNewChat(newJob.chatId, newJob.traceId)
	}
}

func GetJobStatus(id string, traceId string) (result jobmodel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

func ValidateChatRequest(chatReq api.ChatRequest) bool {
	if handlerInstance == nil {
		return false
	}
	logJH.Debug("Validating chat id", "chatId", chatReq.ChatID)
	if chatReq.Message == "" {
		return false
	}
	if chatReq.ChatID == "" {
		return true
	}
	return handlerInstance.service.HistoryStore.ValidateChatId(context.Background(), chatReq.ChatID)
}

// EnqueueProfileDocument queues an ingest job outside the HTTP path, used
// for the profile bootstrap at startup.
func EnqueueProfileDocument(name string, path string, traceId string) string {
	newJob := newJobData{
		id:               newUUID(),
		traceId:          traceId,
		isDocumentIngest: true,
		documentName:     name,
		documentPath:     path,
	}
	CreateNewJob(newJob)
	return newJob.id
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) {
	_job := jobmodel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobmodel.JobStatusQueued

	if newJob.isDocumentIngest {
		_job.CurrentStep = jobmodel.IngestInit
		_job.JobType = jobmodel.JobTypeIngest
		_job.Payload.IngestFileName = newJob.documentName
		_job.Payload.IngestPath = newJob.documentPath
	} else {
		_job.JobType = jobmodel.JobTypeChat
		_job.ChatId = newJob.chatId
		_job.Payload.Question = newJob.message
		_job.CurrentStep = jobmodel.ChatInit
	}

	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //blocking send so the system can't be overwhelmed
	logJH.Info("Created new job")

	// A new worker is started every N requests, and always for an ingest
	// job: ingestion is batch work against an external system, and idle
	// workers retire on their own, so the pool stays small between bursts.
	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || _job.JobType == jobmodel.JobTypeIngest {
		metrics.StartDispatcherSignalCount()
		logJH.Debug("Request count", "count", accurateCount)
		h.service.DispatcherChannel <- true
	}
}

func (h *JobHandler) initNewChat(chatId string, traceId string) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if err := h.service.HistoryStore.InitNewChat(ctxC, chatId); err != nil {
		logJH.Error("Error initiating new chat", "chatId", chatId, "error", err)
	}
}
