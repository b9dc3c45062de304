package mapper

import (
	"autoideas-be/internal/entity"
	"autoideas-be/internal/model"

	"gorm.io/datatypes"
)

type DeadLetterMapper struct{}

func NewDeadLetterMapper() *DeadLetterMapper {
	return &DeadLetterMapper{}
}

func (m *DeadLetterMapper) ToEntity(d *model.DeadLetterJob) *entity.DeadLetterJob {
	if d == nil {
		return nil
	}
	return &entity.DeadLetterJob{
		Id:         d.Id,
		JobId:      d.JobId,
		WorkshopId: d.WorkshopId,
		SessionId:  d.SessionId,
		Payload:    []byte(d.Payload),
		Reason:     d.Reason,
		Attempts:   d.Attempts,
		CreatedAt:  d.CreatedAt,
	}
}

func (m *DeadLetterMapper) ToModel(d *entity.DeadLetterJob) *model.DeadLetterJob {
	if d == nil {
		return nil
	}
	return &model.DeadLetterJob{
		Id:         d.Id,
		JobId:      d.JobId,
		WorkshopId: d.WorkshopId,
		SessionId:  d.SessionId,
		Payload:    datatypes.JSON(d.Payload),
		Reason:     d.Reason,
		Attempts:   d.Attempts,
		CreatedAt:  d.CreatedAt,
	}
}

func (m *DeadLetterMapper) ToEntities(models []*model.DeadLetterJob) []*entity.DeadLetterJob {
	out := make([]*entity.DeadLetterJob, 0, len(models))
	for _, d := range models {
		out = append(out, m.ToEntity(d))
	}
	return out
}
