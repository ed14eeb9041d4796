package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"edu_tutor_backend/internal/model"
	"edu_tutor_backend/internal/util"
)

// 内存实现：切片存储 + 索引映射，用于测试和本地运行，
// 使会话引擎不依赖任何存储细节。

type MemoryTemplateRepo struct {
	mu        sync.RWMutex
	templates []model.ProblemTemplate
	index     map[uint]int
}

func NewMemoryTemplateRepo() *MemoryTemplateRepo {
	return &MemoryTemplateRepo{index: make(map[uint]int)}
}

func (r *MemoryTemplateRepo) Put(tpl model.ProblemTemplate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tpl.TotalSteps = len(tpl.Steps)
	if i, ok := r.index[tpl.ID]; ok {
		r.templates[i] = tpl
		return
	}
	r.index[tpl.ID] = len(r.templates)
	r.templates = append(r.templates, tpl)
}

func (r *MemoryTemplateRepo) GetActive(id uint) (*model.ProblemTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok || !r.templates[i].Active {
		return nil, util.ErrTemplateNotFound
	}
	tpl := r.templates[i]
	return &tpl, nil
}

type memorySession struct {
	session   model.TutorSession
	steps     []model.SessionStep
	responses []model.StepResponse
	mistakes  []model.MistakeRecord
}

type MemorySessionRepo struct {
	mu       sync.Mutex
	sessions []*memorySession
	index    map[string]int
	nextID   uint
}

func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{index: make(map[string]int), nextID: 1}
}

func (r *MemorySessionRepo) Create(session *model.TutorSession, steps []model.SessionStep) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	for i := range steps {
		steps[i].SessionID = session.ID
	}
	r.index[session.ID] = len(r.sessions)
	r.sessions = append(r.sessions, &memorySession{
		session: *session,
		steps:   append([]model.SessionStep(nil), steps...),
	})
	return nil
}

func (r *MemorySessionRepo) find(id string) (*memorySession, error) {
	i, ok := r.index[id]
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	return r.sessions[i], nil
}

func (r *MemorySessionRepo) Get(id string) (*model.TutorSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ms, err := r.find(id)
	if err != nil {
		return nil, err
	}
	s := ms.session
	return &s, nil
}

func (r *MemorySessionRepo) GetSteps(id string) ([]model.SessionStep, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ms, err := r.find(id)
	if err != nil {
		return nil, err
	}
	return append([]model.SessionStep(nil), ms.steps...), nil
}

func (r *MemorySessionRepo) ListByStudent(studentID uint, limit int) ([]model.TutorSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.TutorSession
	for _, ms := range r.sessions {
		if ms.session.StudentID == studentID {
			out = append(out, ms.session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemorySessionRepo) Update(id string, fn func(tx *SessionTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ms, err := r.find(id)
	if err != nil {
		return err
	}

	// 在副本上执行修改，出错时不落盘 —— 与事务回滚语义一致
	session := ms.session
	steps := append([]model.SessionStep(nil), ms.steps...)
	view := &SessionTx{Session: &session, Steps: steps}

	if err := fn(view); err != nil {
		return err
	}

	if view.saveResponse != nil {
		view.saveResponse.ID = r.nextID
		r.nextID++
		ms.responses = append(ms.responses, *view.saveResponse)
	}
	if view.saveMistake != nil {
		if view.saveResponse != nil {
			view.saveMistake.StepResponseID = view.saveResponse.ID
		}
		view.saveMistake.ID = r.nextID
		r.nextID++
		ms.mistakes = append(ms.mistakes, *view.saveMistake)
	}
	ms.session = session
	ms.steps = view.Steps
	ms.session.UpdatedAt = time.Now()
	return nil
}

func (r *MemorySessionRepo) RecentOutcomes(studentID uint, subject string, windowSize int) ([]model.SessionOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var outcomes []model.SessionOutcome
	for i := len(r.sessions) - 1; i >= 0 && len(outcomes) < windowSize; i-- {
		ms := r.sessions[i]
		s := ms.session
		if s.StudentID != studentID || s.Subject != subject || s.Status == model.SessionActive {
			continue
		}
		acc, perType := stepAccuracy(ms.steps, s.TotalSteps)
		outcomes = append(outcomes, model.SessionOutcome{
			Accuracy:         acc,
			Completed:        s.Status == model.SessionCompleted,
			Hints:            s.HintsUsed,
			Mistakes:         s.MistakesMade,
			StepTypeAccuracy: perType,
		})
	}
	return outcomes, nil
}

func (r *MemorySessionRepo) MistakeCountByKind(sessionID string, stepType model.StepType) (map[model.MistakeKind]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ms, err := r.find(sessionID)
	if err != nil {
		return nil, err
	}
	counts := make(map[model.MistakeKind]int)
	for _, m := range ms.mistakes {
		if m.StepType == stepType {
			counts[m.Kind]++
		}
	}
	return counts, nil
}

func (r *MemorySessionRepo) StaleActiveSessions(olderThanHours int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-time.Duration(olderThanHours) * time.Hour)
	var ids []string
	for _, ms := range r.sessions {
		if ms.session.Status == model.SessionActive && ms.session.UpdatedAt.Before(cutoff) {
			ids = append(ids, ms.session.ID)
		}
	}
	return ids, nil
}

// Mistakes 返回某会话的全部错误记录（测试用）
func (r *MemorySessionRepo) Mistakes(sessionID string) []model.MistakeRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	ms, err := r.find(sessionID)
	if err != nil {
		return nil
	}
	return append([]model.MistakeRecord(nil), ms.mistakes...)
}

// Responses 返回某会话的全部作答记录（测试用）
func (r *MemorySessionRepo) Responses(sessionID string) []model.StepResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	ms, err := r.find(sessionID)
	if err != nil {
		return nil
	}
	return append([]model.StepResponse(nil), ms.responses...)
}

type MemoryPreferenceRepo struct {
	mu    sync.Mutex
	prefs []model.DifficultyPreference
	index map[string]int
}

func NewMemoryPreferenceRepo() *MemoryPreferenceRepo {
	return &MemoryPreferenceRepo{index: make(map[string]int)}
}

func prefKey(studentID uint, subject string) string {
	return fmt.Sprintf("%d/%s", studentID, subject)
}

func (r *MemoryPreferenceRepo) Get(studentID uint, subject string) (*model.DifficultyPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i, ok := r.index[prefKey(studentID, subject)]; ok {
		pref := r.prefs[i]
		return &pref, nil
	}
	return &model.DifficultyPreference{
		StudentID:  studentID,
		Subject:    subject,
		Tier:       model.TierMedium,
		Confidence: 0.5,
	}, nil
}

func (r *MemoryPreferenceRepo) Save(pref *model.DifficultyPreference) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := prefKey(pref.StudentID, pref.Subject)
	if i, ok := r.index[key]; ok {
		r.prefs[i] = *pref
		return nil
	}
	r.index[key] = len(r.prefs)
	r.prefs = append(r.prefs, *pref)
	return nil
}
