package repository

import (
	"context"
	"fmt"
	"time"

	"edu_tutor_backend/internal/model"
	"edu_tutor_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepository struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewSessionRepository(db *gorm.DB, rdb *redis.Client) *SessionRepository {
	return &SessionRepository{DB: db, RDB: rdb}
}

func (r *SessionRepository) Create(session *model.TutorSession, steps []model.SessionStep) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		for i := range steps {
			steps[i].SessionID = session.ID
		}
		return tx.Create(&steps).Error
	})
}

func (r *SessionRepository) Get(id string) (*model.TutorSession, error) {
	var s model.TutorSession
	if err := r.DB.First(&s, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) GetSteps(id string) ([]model.SessionStep, error) {
	var steps []model.SessionStep
	err := r.DB.Where("session_id = ?", id).Order("step_number ASC").Find(&steps).Error
	return steps, err
}

func (r *SessionRepository) ListByStudent(studentID uint, limit int) ([]model.TutorSession, error) {
	var sessions []model.TutorSession
	err := r.DB.Where("student_id = ?", studentID).
		Order("started_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

// Update 在单个事务内以 SELECT ... FOR UPDATE 加载会话并应用修改，
// 作答记录与游标推进要么同时落库，要么同时回滚。
func (r *SessionRepository) Update(id string, fn func(tx *SessionTx) error) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var session model.TutorSession
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&session, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return util.ErrSessionNotFound
			}
			return err
		}

		var steps []model.SessionStep
		if err := tx.Where("session_id = ?", id).Order("step_number ASC").Find(&steps).Error; err != nil {
			return err
		}

		view := &SessionTx{Session: &session, Steps: steps}
		if err := fn(view); err != nil {
			return err
		}

		if view.saveResponse != nil {
			if err := tx.Create(view.saveResponse).Error; err != nil {
				return err
			}
		}
		if view.saveMistake != nil {
			if view.saveResponse != nil {
				view.saveMistake.StepResponseID = view.saveResponse.ID
			}
			if err := tx.Create(view.saveMistake).Error; err != nil {
				return err
			}
		}
		for i := range view.Steps {
			if err := tx.Save(&view.Steps[i]).Error; err != nil {
				return err
			}
		}
		if err := tx.Save(&session).Error; err != nil {
			return err
		}

		r.invalidate(id)
		return nil
	})
}

// RecentOutcomes 取最近 windowSize 个终态会话的结果摘要
func (r *SessionRepository) RecentOutcomes(studentID uint, subject string, windowSize int) ([]model.SessionOutcome, error) {
	var sessions []model.TutorSession
	err := r.DB.Where("student_id = ? AND subject = ? AND status IN ?",
		studentID, subject, []model.SessionStatus{model.SessionCompleted, model.SessionAbandoned}).
		Order("completed_at DESC").
		Limit(windowSize).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	outcomes := make([]model.SessionOutcome, 0, len(sessions))
	for _, s := range sessions {
		overall, perType := sessionAccuracy(r.DB, s.ID, s.TotalSteps)
		outcomes = append(outcomes, model.SessionOutcome{
			Accuracy:         overall,
			Completed:        s.Status == model.SessionCompleted,
			Hints:            s.HintsUsed,
			Mistakes:         s.MistakesMade,
			StepTypeAccuracy: perType,
		})
	}
	return outcomes, nil
}

// sessionAccuracy 折算整场正确率以及按步骤类型的正确率。
// 未完成的步骤按 0 分计入其类型的分母。
func sessionAccuracy(db *gorm.DB, sessionID string, totalSteps int) (float64, map[model.StepType]float64) {
	var steps []model.SessionStep
	if err := db.Where("session_id = ?", sessionID).Find(&steps).Error; err != nil {
		return 0, nil
	}
	return stepAccuracy(steps, totalSteps)
}

func stepAccuracy(steps []model.SessionStep, totalSteps int) (float64, map[model.StepType]float64) {
	var sum float64
	typeSum := make(map[model.StepType]float64)
	typeCount := make(map[model.StepType]int)
	for _, st := range steps {
		typeCount[st.Type]++
		if st.Completed {
			sum += st.AccuracyScore
			typeSum[st.Type] += st.AccuracyScore
		}
	}

	perType := make(map[model.StepType]float64, len(typeCount))
	for typ, n := range typeCount {
		perType[typ] = typeSum[typ] / float64(n)
	}

	overall := 0.0
	if totalSteps > 0 {
		overall = sum / float64(totalSteps)
	}
	return overall, perType
}

func (r *SessionRepository) MistakeCountByKind(sessionID string, stepType model.StepType) (map[model.MistakeKind]int, error) {
	type row struct {
		Kind  model.MistakeKind
		Count int
	}
	var rows []row
	err := r.DB.Model(&model.MistakeRecord{}).
		Where("session_id = ? AND step_type = ?", sessionID, stepType).
		Select("kind, COUNT(*) as count").
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.MistakeKind]int, len(rows))
	for _, r := range rows {
		counts[r.Kind] = r.Count
	}
	return counts, nil
}

func (r *SessionRepository) StaleActiveSessions(olderThanHours int) ([]string, error) {
	cutoff := time.Now().Add(-time.Duration(olderThanHours) * time.Hour)
	var ids []string
	err := r.DB.Model(&model.TutorSession{}).
		Where("status = ? AND updated_at < ?", model.SessionActive, cutoff).
		Pluck("id", &ids).Error
	return ids, err
}

const snapshotTTL = 5 * time.Minute

func snapshotKey(sessionID string) string {
	return fmt.Sprintf("tutor:session:%s:snapshot", sessionID)
}

// GetSnapshot 读取缓存的会话快照
func (r *SessionRepository) GetSnapshot(ctx context.Context, sessionID string) ([]byte, bool) {
	if r.RDB == nil {
		return nil, false
	}
	data, err := r.RDB.Get(ctx, snapshotKey(sessionID)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (r *SessionRepository) SetSnapshot(ctx context.Context, sessionID string, data []byte) {
	if r.RDB == nil {
		return
	}
	r.RDB.Set(ctx, snapshotKey(sessionID), data, snapshotTTL)
}

func (r *SessionRepository) Invalidate(ctx context.Context, sessionID string) {
	if r.RDB == nil {
		return
	}
	r.RDB.Del(ctx, snapshotKey(sessionID))
}

func (r *SessionRepository) invalidate(sessionID string) {
	r.Invalidate(context.Background(), sessionID)
}
