package repository

import (
	"context"

	"edu_tutor_backend/internal/model"
)

// TemplateRepo 题目模板读取接口
type TemplateRepo interface {
	// GetActive 返回存在且处于启用状态的模板（含步骤定义），
	// 否则返回 util.ErrTemplateNotFound
	GetActive(id uint) (*model.ProblemTemplate, error)
}

// SessionRepo 会话持久化接口。Update 回调在单个事务内执行，
// 带 load-for-update 语义，配合服务层的按会话加锁实现串行化。
type SessionRepo interface {
	Create(session *model.TutorSession, steps []model.SessionStep) error
	Get(id string) (*model.TutorSession, error)
	GetSteps(id string) ([]model.SessionStep, error)
	ListByStudent(studentID uint, limit int) ([]model.TutorSession, error)

	// Update 以独占方式加载会话，交给 fn 修改，失败则整体回滚。
	// fn 返回的附加记录（作答、错误记录、步骤变更）与会话写入同一事务。
	Update(id string, fn func(tx *SessionTx) error) error

	// RecentOutcomes 按 (学生, 学科) 返回最近 windowSize 个终态会话的结果摘要
	RecentOutcomes(studentID uint, subject string, windowSize int) ([]model.SessionOutcome, error)

	// MistakeCountByKind 本会话内某步骤类型下各类错误的出现次数
	MistakeCountByKind(sessionID string, stepType model.StepType) (map[model.MistakeKind]int, error)

	// StaleActiveSessions 返回最后更新时间早于给定小时数的活跃会话 id
	StaleActiveSessions(olderThanHours int) ([]string, error)
}

// SessionTx 是 Update 回调可见的事务视图
type SessionTx struct {
	Session *model.TutorSession
	Steps   []model.SessionStep

	saveResponse *model.StepResponse
	saveMistake  *model.MistakeRecord
}

// RecordResponse 将作答记入本事务
func (t *SessionTx) RecordResponse(resp *model.StepResponse) {
	t.saveResponse = resp
}

// RecordMistake 将错误分类记入本事务，要求作答已记录
func (t *SessionTx) RecordMistake(m *model.MistakeRecord) {
	t.saveMistake = m
}

// PreferenceRepo 难度偏好存取接口
type PreferenceRepo interface {
	// Get 返回偏好；不存在时返回以 medium 初始化的零值偏好（不落库）
	Get(studentID uint, subject string) (*model.DifficultyPreference, error)
	Save(pref *model.DifficultyPreference) error
}

// UserRepo 用户存取接口（认证层使用）
type UserRepo interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	TouchLastLogin(id uint) error
}

// SnapshotCache 会话快照读缓存，可为 nil（禁用）
type SnapshotCache interface {
	GetSnapshot(ctx context.Context, sessionID string) ([]byte, bool)
	SetSnapshot(ctx context.Context, sessionID string, data []byte)
	Invalidate(ctx context.Context, sessionID string)
}
