package model

// StepType 步骤类型，固定集合
type StepType string

const (
	StepConceptual    StepType = "conceptual"
	StepProcedural    StepType = "procedural"
	StepComputational StepType = "computational"
	StepReflective    StepType = "reflective"
)

// swagger:model ProblemTemplate
type ProblemTemplate struct {
	BaseModel
	Title      string `gorm:"size:200;not null" json:"title"`
	Subject    string `gorm:"size:100;index;not null" json:"subject"`
	Difficulty string `gorm:"size:20;default:'medium'" json:"difficulty"`
	Active     bool   `gorm:"default:true" json:"active"`
	CreatorID  uint   `gorm:"index" json:"creatorId"`
	TotalSteps int    `json:"totalSteps"`

	Steps []TemplateStep `gorm:"foreignKey:TemplateID" json:"steps,omitempty"`
}

func (ProblemTemplate) TableName() string {
	return "problem_templates"
}

// swagger:model TemplateStep
type TemplateStep struct {
	BaseModel
	TemplateID     uint     `gorm:"index;type:bigint unsigned" json:"templateId"`
	StepNumber     int      `gorm:"not null" json:"stepNumber"`
	Title          string   `gorm:"size:200" json:"title"`
	Type           StepType `gorm:"size:20;default:'procedural'" json:"type"`
	Instruction    string   `gorm:"type:text" json:"instruction"`
	ExpectedAnswer string   `gorm:"type:text" json:"expectedAnswer"`
	ExpectedShape  string   `gorm:"size:50" json:"expectedShape"`
}

func (TemplateStep) TableName() string {
	return "template_steps"
}
