package repository

import (
	"edu_tutor_backend/internal/model"
	"edu_tutor_backend/internal/util"

	"gorm.io/gorm"
)

type TemplateRepository struct {
	DB *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{DB: db}
}

func (r *TemplateRepository) Create(tpl *model.ProblemTemplate) error {
	tpl.TotalSteps = len(tpl.Steps)
	return r.DB.Create(tpl).Error
}

func (r *TemplateRepository) Update(tpl *model.ProblemTemplate) error {
	return r.DB.Save(tpl).Error
}

func (r *TemplateRepository) FindByID(id uint) (*model.ProblemTemplate, error) {
	var tpl model.ProblemTemplate
	if err := r.DB.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("step_number ASC")
	}).First(&tpl, id).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

// GetActive 只返回启用中的模板，缺失或停用都视为 NotFound
func (r *TemplateRepository) GetActive(id uint) (*model.ProblemTemplate, error) {
	tpl, err := r.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrTemplateNotFound
		}
		return nil, err
	}
	if !tpl.Active {
		return nil, util.ErrTemplateNotFound
	}
	return tpl, nil
}

func (r *TemplateRepository) List(subject string, page, limit int) ([]model.ProblemTemplate, int64, error) {
	var tpls []model.ProblemTemplate
	var total int64

	query := r.DB.Model(&model.ProblemTemplate{})
	if subject != "" {
		query = query.Where("subject = ?", subject)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tpls).Error
	return tpls, total, err
}

func (r *TemplateRepository) SetActive(id uint, active bool) error {
	return r.DB.Model(&model.ProblemTemplate{}).Where("id = ?", id).Update("active", active).Error
}
