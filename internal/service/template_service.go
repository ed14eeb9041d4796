package service

import (
	"edu_tutor_backend/internal/model"
	"edu_tutor_backend/internal/repository"
)

// TemplateService 题目模板管理（教师/管理员维护，学生侧只读）
type TemplateService struct {
	Templates *repository.TemplateRepository
}

func NewTemplateService(templates *repository.TemplateRepository) *TemplateService {
	return &TemplateService{Templates: templates}
}

type CreateTemplateRequest struct {
	Title      string              `json:"title" binding:"required"`
	Subject    string              `json:"subject" binding:"required"`
	Difficulty string              `json:"difficulty" binding:"omitempty,oneof=very_easy easy medium hard very_hard"`
	Steps      []TemplateStepInput `json:"steps" binding:"required,min=1,dive"`
}

type TemplateStepInput struct {
	Title          string `json:"title" binding:"required"`
	Type           string `json:"type" binding:"required,oneof=conceptual procedural computational reflective"`
	Instruction    string `json:"instruction" binding:"required"`
	ExpectedAnswer string `json:"expectedAnswer"`
	ExpectedShape  string `json:"expectedShape" binding:"omitempty,oneof=number text expression"`
}

func (s *TemplateService) Create(req CreateTemplateRequest, creatorID uint) (*model.ProblemTemplate, error) {
	if req.Difficulty == "" {
		req.Difficulty = string(model.TierMedium)
	}

	tpl := &model.ProblemTemplate{
		Title:      req.Title,
		Subject:    req.Subject,
		Difficulty: req.Difficulty,
		Active:     true,
		CreatorID:  creatorID,
	}
	for i, in := range req.Steps {
		tpl.Steps = append(tpl.Steps, model.TemplateStep{
			StepNumber:     i + 1,
			Title:          in.Title,
			Type:           model.StepType(in.Type),
			Instruction:    in.Instruction,
			ExpectedAnswer: in.ExpectedAnswer,
			ExpectedShape:  in.ExpectedShape,
		})
	}

	if err := s.Templates.Create(tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *TemplateService) Get(id uint) (*model.ProblemTemplate, error) {
	return s.Templates.FindByID(id)
}

func (s *TemplateService) List(subject string, page, limit int) ([]model.ProblemTemplate, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.Templates.List(subject, page, limit)
}

func (s *TemplateService) SetActive(id uint, active bool) error {
	return s.Templates.SetActive(id, active)
}
