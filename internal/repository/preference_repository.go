package repository

import (
	"edu_tutor_backend/internal/model"

	"gorm.io/gorm"
)

type PreferenceRepository struct {
	DB *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{DB: db}
}

// Get 不存在时返回以 medium 初始化的偏好，不写库
func (r *PreferenceRepository) Get(studentID uint, subject string) (*model.DifficultyPreference, error) {
	var pref model.DifficultyPreference
	err := r.DB.Where("student_id = ? AND subject = ?", studentID, subject).First(&pref).Error
	if err == gorm.ErrRecordNotFound {
		return &model.DifficultyPreference{
			StudentID:  studentID,
			Subject:    subject,
			Tier:       model.TierMedium,
			Confidence: 0.5,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *PreferenceRepository) Save(pref *model.DifficultyPreference) error {
	return r.DB.Save(pref).Error
}
