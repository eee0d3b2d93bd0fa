package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"questboard/contexts/task-engagement/submission-service/domain/entities"
	domainerrors "questboard/contexts/task-engagement/submission-service/domain/errors"
	"questboard/contexts/task-engagement/submission-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Repository implements ports.Repository on gorm. It runs against Postgres in
// production and against SQLite locally; SQLite ignores the row locks and
// relies on its single writer instead.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the tables this repository owns.
func (r *Repository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(
		&memberModel{},
		&memberCompletionModel{},
		&taskModel{},
		&submissionModel{},
		&ledgerEntryModel{},
		&outboxModel{},
	)
}

func (r *Repository) GetMember(ctx context.Context, memberID string) (entities.Member, error) {
	return loadMember(r.db.WithContext(ctx), strings.TrimSpace(memberID), false)
}

func (r *Repository) EnsureMember(ctx context.Context, member entities.Member) (entities.Member, error) {
	var stored entities.Member
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := memberModel{
			MemberID:    member.MemberID,
			Email:       member.Email,
			DisplayName: member.DisplayName,
			Active:      member.Active,
			CreatedAt:   member.CreatedAt.UTC(),
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = time.Now().UTC()
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "member_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "display_name", "active"}),
		}).Create(&row).Error; err != nil {
			return err
		}
		loaded, err := loadMember(tx, member.MemberID, false)
		if err != nil {
			return err
		}
		stored = loaded
		return nil
	})
	if err != nil {
		return entities.Member{}, err
	}
	return stored, nil
}

func (r *Repository) CreateTask(ctx context.Context, task entities.Task) error {
	row := taskModel{
		TaskID:      task.TaskID,
		Title:       task.Title,
		Description: task.Description,
		PointValue:  task.PointValue,
		CreatedAt:   task.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateTask
		}
		return err
	}
	return nil
}

func (r *Repository) GetTask(ctx context.Context, taskID string) (entities.Task, error) {
	return loadTask(r.db.WithContext(ctx), "task_id = ?", strings.TrimSpace(taskID))
}

func (r *Repository) GetTaskByTitle(ctx context.Context, title string) (entities.Task, error) {
	return loadTask(r.db.WithContext(ctx), "title = ?", strings.TrimSpace(title))
}

func (r *Repository) ListTasks(ctx context.Context) ([]entities.Task, error) {
	var rows []taskModel
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Task, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CreateSubmission(
	ctx context.Context,
	submission entities.Submission,
	admit ports.AdmitFunc,
	event ports.EventEnvelope,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := loadMember(tx, submission.MemberID, true)
		if err != nil {
			return err
		}
		if _, err := loadTask(tx, "task_id = ?", submission.TaskID); err != nil {
			return err
		}
		admitted, err := admit(member)
		if err != nil {
			return err
		}

		var pending int64
		if err := tx.Model(&submissionModel{}).
			Where("member_id = ?", submission.MemberID).
			Where("task_id = ?", submission.TaskID).
			Count(&pending).
			Error; err != nil {
			return err
		}
		if pending > 0 {
			return domainerrors.ErrDuplicatePending
		}

		row := submissionModelFromEntity(submission)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrDuplicatePending
			}
			return err
		}
		if err := tx.Model(&memberModel{}).
			Where("member_id = ?", submission.MemberID).
			Updates(map[string]any{
				"submission_count_in_window": admitted.SubmissionCountInWindow,
				"window_started_at":          normalizeOptionalTime(admitted.WindowStartedAt),
			}).Error; err != nil {
			return err
		}
		return appendOutbox(tx, event)
	})
}

func (r *Repository) GetSubmission(ctx context.Context, submissionID string) (entities.Submission, error) {
	var row submissionModel
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", strings.TrimSpace(submissionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Submission{}, domainerrors.ErrSubmissionNotFound
		}
		return entities.Submission{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListSubmissions(ctx context.Context, filter ports.SubmissionFilter) ([]entities.Submission, error) {
	tx := r.db.WithContext(ctx).Model(&submissionModel{})
	if strings.TrimSpace(filter.MemberID) != "" {
		tx = tx.Where("member_id = ?", strings.TrimSpace(filter.MemberID))
	}
	if strings.TrimSpace(filter.TaskID) != "" {
		tx = tx.Where("task_id = ?", strings.TrimSpace(filter.TaskID))
	}

	var rows []submissionModel
	if err := tx.Order("created_at ASC").Order("submission_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Submission, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) TransitionAndDelete(
	ctx context.Context,
	submissionID string,
	outcome entities.Outcome,
	decidedBy string,
	decidedAt time.Time,
	apply ports.ApplyDecisionFunc,
) (entities.Decision, error) {
	var decision entities.Decision
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row submissionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("submission_id = ?", strings.TrimSpace(submissionID)).
			First(&row).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrSubmissionNotFound
			}
			return err
		}

		member, err := loadMember(tx, row.MemberID, false)
		if err != nil {
			if errors.Is(err, domainerrors.ErrMemberNotFound) {
				return domainerrors.ErrInconsistentState
			}
			return err
		}
		task, err := loadTask(tx, "task_id = ?", row.TaskID)
		if err != nil {
			if errors.Is(err, domainerrors.ErrTaskNotFound) {
				return domainerrors.ErrInconsistentState
			}
			return err
		}

		decided := row.toEntity()
		decided.State = outcome.TerminalState()
		decision = entities.Decision{
			Submission: decided,
			Member:     member,
			Task:       task,
			Outcome:    outcome,
			DecidedAt:  decidedAt.UTC(),
			DecidedBy:  decidedBy,
		}
		if err := apply(ctx, decisionScope{tx: tx}, decision); err != nil {
			return err
		}

		result := tx.Where("submission_id = ?", row.SubmissionID).Delete(&submissionModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrSubmissionNotFound
		}
		return nil
	})
	if err != nil {
		return entities.Decision{}, err
	}
	return decision, nil
}

func (r *Repository) ListLedgerEntries(ctx context.Context, memberID string) ([]entities.LedgerEntry, error) {
	var rows []ledgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("member_id = ?", strings.TrimSpace(memberID)).
		Order("created_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

type leaderboardRow struct {
	MemberID        string `gorm:"column:member_id"`
	DisplayName     string `gorm:"column:display_name"`
	CumulativeScore int    `gorm:"column:cumulative_score"`
	CompletedTasks  int    `gorm:"column:completed_tasks"`
}

func (r *Repository) ListLeaderboard(ctx context.Context, limit int, offset int) ([]entities.LeaderboardEntry, error) {
	var rows []leaderboardRow
	query := r.db.WithContext(ctx).
		Model(&memberModel{}).
		Select("members.member_id, members.display_name, members.cumulative_score, " +
			"(SELECT COUNT(*) FROM member_completions c WHERE c.member_id = members.member_id) AS completed_tasks").
		Where("members.active = ?", true).
		Order("members.cumulative_score DESC").
		Order("members.display_name ASC").
		Order("members.member_id ASC").
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		items = append(items, entities.LeaderboardEntry{
			MemberID:        row.MemberID,
			DisplayName:     row.DisplayName,
			CumulativeScore: row.CumulativeScore,
			CompletedTasks:  row.CompletedTasks,
			Rank:            offset + i + 1,
		})
	}
	return items, nil
}

func (r *Repository) MemberRank(ctx context.Context, memberID string) (int, error) {
	var member memberModel
	if err := r.db.WithContext(ctx).
		Where("member_id = ?", strings.TrimSpace(memberID)).
		First(&member).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domainerrors.ErrMemberNotFound
		}
		return 0, err
	}
	if !member.Active {
		return 0, nil
	}

	var ahead int64
	if err := r.db.WithContext(ctx).
		Model(&memberModel{}).
		Where("active = ?", true).
		Where(
			"cumulative_score > ? OR (cumulative_score = ? AND display_name < ?) OR (cumulative_score = ? AND display_name = ? AND member_id < ?)",
			member.CumulativeScore,
			member.CumulativeScore, member.DisplayName,
			member.CumulativeScore, member.DisplayName, member.MemberID,
		).
		Count(&ahead).
		Error; err != nil {
		return 0, err
	}
	return int(ahead) + 1, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:    row.OutboxID,
			EventType:   row.EventType,
			Payload:     append([]byte(nil), row.Payload...),
			CreatedAt:   row.CreatedAt.UTC(),
			PublishedAt: normalizeOptionalTime(row.PublishedAt),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		}).
		Error
}

// decisionScope binds ledger writes to the decision transaction.
type decisionScope struct {
	tx *gorm.DB
}

func (s decisionScope) Credit(ctx context.Context, entry entities.LedgerEntry) (int, error) {
	if entry.Points < 0 {
		return 0, domainerrors.ErrInvalidDecision
	}
	tx := s.tx.WithContext(ctx)
	result := tx.Model(&memberModel{}).
		Where("member_id = ?", entry.MemberID).
		Update("cumulative_score", gorm.Expr("cumulative_score + ?", entry.Points))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, domainerrors.ErrMemberNotFound
	}

	row := ledgerEntryModel{
		EntryID:      entry.EntryID,
		MemberID:     entry.MemberID,
		SubmissionID: entry.SubmissionID,
		TaskID:       entry.TaskID,
		Points:       entry.Points,
		Reason:       entry.Reason,
		CreatedAt:    entry.CreatedAt.UTC(),
	}
	if row.EntryID == "" {
		row.EntryID = uuid.NewString()
	}
	if err := tx.Create(&row).Error; err != nil {
		return 0, err
	}

	var member memberModel
	if err := tx.Select("cumulative_score").
		Where("member_id = ?", entry.MemberID).
		First(&member).
		Error; err != nil {
		return 0, err
	}
	return member.CumulativeScore, nil
}

func (s decisionScope) MarkTaskCompleted(ctx context.Context, memberID string, taskID string) error {
	return s.tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&memberCompletionModel{
			MemberID:    memberID,
			TaskID:      taskID,
			CompletedAt: time.Now().UTC(),
		}).
		Error
}

func (s decisionScope) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	return appendOutbox(s.tx.WithContext(ctx), envelope)
}

func appendOutbox(tx *gorm.DB, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row).Error
}

func loadMember(tx *gorm.DB, memberID string, forUpdate bool) (entities.Member, error) {
	query := tx
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row memberModel
	if err := query.Where("member_id = ?", memberID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Member{}, domainerrors.ErrMemberNotFound
		}
		return entities.Member{}, err
	}

	var completions []memberCompletionModel
	if err := tx.Where("member_id = ?", memberID).Find(&completions).Error; err != nil {
		return entities.Member{}, err
	}
	completed := make([]string, 0, len(completions))
	for _, item := range completions {
		completed = append(completed, item.TaskID)
	}
	sort.Strings(completed)
	return row.toEntity(completed), nil
}

func loadTask(tx *gorm.DB, condition string, value string) (entities.Task, error) {
	var row taskModel
	if err := tx.Where(condition, value).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Task{}, domainerrors.ErrTaskNotFound
		}
		return entities.Task{}, err
	}
	return row.toEntity(), nil
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
