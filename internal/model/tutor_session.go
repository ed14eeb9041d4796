package model

import "time"

// SessionStatus 会话状态机：active -> completed | abandoned
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

// UnderstandingLevel 学生对当前步骤的掌握程度
type UnderstandingLevel string

const (
	UnderstandingLow     UnderstandingLevel = "low"
	UnderstandingPartial UnderstandingLevel = "partial"
	UnderstandingSolid   UnderstandingLevel = "solid"
)

// swagger:model TutorSession
type TutorSession struct {
	UUIDBase
	StudentID    uint          `gorm:"index;type:bigint unsigned;not null" json:"studentId"`
	TemplateID   uint          `gorm:"index;type:bigint unsigned;not null" json:"templateId"`
	Subject      string        `gorm:"size:100;index" json:"subject"`
	Status       SessionStatus `gorm:"size:20;index;default:'active'" json:"status"`
	CurrentStep  int           `gorm:"default:1" json:"currentStep"`
	TotalSteps   int           `gorm:"not null" json:"totalSteps"`
	HintsUsed    int           `gorm:"default:0" json:"hintsUsed"`
	MistakesMade int           `gorm:"default:0" json:"mistakesMade"`
	StartedAt    time.Time     `json:"startedAt"`
	CompletedAt  *time.Time    `json:"completedAt,omitempty"`

	Steps []SessionStep `gorm:"foreignKey:SessionID" json:"steps,omitempty"`
}

func (TutorSession) TableName() string {
	return "tutor_sessions"
}

// Terminal 会话是否已进入终态
func (s *TutorSession) Terminal() bool {
	return s.Status == SessionCompleted || s.Status == SessionAbandoned
}

// swagger:model SessionStep
type SessionStep struct {
	BaseModel
	SessionID      string             `gorm:"index;type:varchar(36);not null" json:"sessionId"`
	StepNumber     int                `gorm:"not null" json:"stepNumber"`
	Title          string             `gorm:"size:200" json:"title"`
	Type           StepType           `gorm:"size:20" json:"type"`
	Instruction    string             `gorm:"type:text" json:"instruction"`
	ExpectedAnswer string             `gorm:"type:text" json:"-"`
	ExpectedShape  string             `gorm:"size:50" json:"expectedShape"`
	Completed      bool               `gorm:"default:false" json:"completed"`
	AccuracyScore  float64            `gorm:"default:0" json:"accuracyScore"`
	Understanding  UnderstandingLevel `gorm:"size:20;default:'partial'" json:"understanding"`
	AttemptCount   int                `gorm:"default:0" json:"attemptCount"`
}

func (SessionStep) TableName() string {
	return "session_steps"
}

// swagger:model StepResponse
type StepResponse struct {
	BaseModel
	SessionID        string `gorm:"index;type:varchar(36);not null" json:"sessionId"`
	StepNumber       int    `gorm:"not null" json:"stepNumber"`
	ResponseText     string `gorm:"type:text" json:"responseText"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
	HelpRequested    bool   `gorm:"default:false" json:"helpRequested"`
}

func (StepResponse) TableName() string {
	return "step_responses"
}

// MistakeKind 错误类别
type MistakeKind string

const (
	MistakeConceptual    MistakeKind = "conceptual"
	MistakeProcedural    MistakeKind = "procedural"
	MistakeComputational MistakeKind = "computational"
	MistakeOther         MistakeKind = "other"
)

// MistakeSeverity 错误严重程度
type MistakeSeverity string

const (
	SeverityLow    MistakeSeverity = "low"
	SeverityMedium MistakeSeverity = "medium"
	SeverityHigh   MistakeSeverity = "high"
)

// swagger:model MistakeRecord
type MistakeRecord struct {
	BaseModel
	SessionID      string          `gorm:"index;type:varchar(36);not null" json:"sessionId"`
	StepResponseID uint            `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"stepResponseId"`
	StepType       StepType        `gorm:"size:20" json:"stepType"`
	Kind           MistakeKind     `gorm:"size:20;index" json:"kind"`
	Severity       MistakeSeverity `gorm:"size:10" json:"severity"`
	Repeated       bool            `gorm:"default:false" json:"repeated"`
	Explanation    string          `gorm:"type:text" json:"explanation"`
	Remediation    string          `gorm:"type:text" json:"remediation"`
	FollowUps      string          `gorm:"type:json" json:"followUps"`
}

func (MistakeRecord) TableName() string {
	return "mistake_records"
}
