package adapter

import (
	"fmt"
	"time"

	"github.com/sgupta/personabot/internal/api"
	"github.com/sgupta/personabot/internal/domain/jobmodel"
)

func ToInitJobResponse(id string, chatId string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		ChatId:    chatId,
		StatusURL: fmt.Sprintf("/status/%s", id),
	}
}

func ToAPIResponse(job jobmodel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status: string(job.Status),
		Answer: ToChatAnswer(job.Payload),
	}

	return api.JobResponse{
		Id:        job.Id,
		ChatId:    job.ChatId,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToChatAnswer(p jobmodel.Payload) *api.ChatAnswer {
	if p.Answer == "" && len(p.Sources) == 0 {
		return nil
	}

	return &api.ChatAnswer{
		Question:  p.Question,
		Answer:    p.Answer,
		Sources:   p.Sources,
		ToolsUsed: p.ToolsUsed,
	}
}

func BadRequest(id string, message string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		ChatId:    "",
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
			Answer: ToChatAnswer(jobmodel.Payload{}),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: message,
			Retry:   false,
		},
	}
}
