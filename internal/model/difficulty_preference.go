package model

// DifficultyTier 离散难度等级，决定向学生推送的题目
type DifficultyTier string

const (
	TierVeryEasy DifficultyTier = "very_easy"
	TierEasy     DifficultyTier = "easy"
	TierMedium   DifficultyTier = "medium"
	TierHard     DifficultyTier = "hard"
	TierVeryHard DifficultyTier = "very_hard"
)

// tierOrder 等级的全序，用于单步升降
var tierOrder = []DifficultyTier{TierVeryEasy, TierEasy, TierMedium, TierHard, TierVeryHard}

// TierIndex 返回等级序号，未知等级按 medium 处理
func TierIndex(t DifficultyTier) int {
	for i, v := range tierOrder {
		if v == t {
			return i
		}
	}
	return 2
}

// TierAt 返回序号对应的等级，越界取端点
func TierAt(i int) DifficultyTier {
	if i < 0 {
		i = 0
	}
	if i >= len(tierOrder) {
		i = len(tierOrder) - 1
	}
	return tierOrder[i]
}

// swagger:model DifficultyPreference
type DifficultyPreference struct {
	BaseModel
	StudentID       uint           `gorm:"uniqueIndex:idx_student_subject;type:bigint unsigned;not null" json:"studentId"`
	Subject         string         `gorm:"uniqueIndex:idx_student_subject;size:100;not null" json:"subject"`
	Tier            DifficultyTier `gorm:"size:20;default:'medium'" json:"tier"`
	Confidence      float64        `gorm:"default:0.5" json:"confidence"`
	LastReason      string         `gorm:"size:255" json:"lastReason"`
	AdjustmentCount int            `gorm:"default:0" json:"adjustmentCount"`
	Manual          bool           `gorm:"default:false" json:"manual"`
}

func (DifficultyPreference) TableName() string {
	return "difficulty_preferences"
}

// SessionOutcome 会话结束后的结果摘要，供难度自适应和
// 脚手架个性化消费
type SessionOutcome struct {
	Accuracy  float64 `json:"accuracy"`
	Completed bool    `json:"completed"`
	Hints     int     `json:"hints"`
	Mistakes  int     `json:"mistakes"`
	// StepTypeAccuracy 按步骤类型折算的正确率，用于识别强弱项
	StepTypeAccuracy map[StepType]float64 `json:"stepTypeAccuracy,omitempty"`
}
