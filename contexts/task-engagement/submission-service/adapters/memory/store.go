package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"questboard/contexts/task-engagement/submission-service/domain/entities"
	domainerrors "questboard/contexts/task-engagement/submission-service/domain/errors"
	"questboard/contexts/task-engagement/submission-service/ports"

	"github.com/google/uuid"
)

type Seed struct {
	Members []entities.Member
	Tasks   []entities.Task
}

type storedSubmission struct {
	submission entities.Submission
	seq        int64
}

// Store keeps all state behind one mutex, so every operation is a
// serializable transaction. Decisions stage member changes on copies and
// commit them only when apply succeeds.
type Store struct {
	mu sync.RWMutex

	members     map[string]entities.Member
	tasks       map[string]entities.Task
	taskByTitle map[string]string
	submissions map[string]storedSubmission
	ledger      []entities.LedgerEntry
	outbox      []ports.OutboxMessage
	seq         int64
}

func NewStore(seed Seed) *Store {
	store := &Store{
		members:     make(map[string]entities.Member, len(seed.Members)),
		tasks:       make(map[string]entities.Task, len(seed.Tasks)),
		taskByTitle: make(map[string]string, len(seed.Tasks)),
		submissions: make(map[string]storedSubmission),
	}
	for _, member := range seed.Members {
		store.members[member.MemberID] = member.Clone()
	}
	for _, task := range seed.Tasks {
		store.tasks[task.TaskID] = task
		store.taskByTitle[task.Title] = task.TaskID
	}
	return store
}

func (s *Store) GetMember(_ context.Context, memberID string) (entities.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	member, ok := s.members[strings.TrimSpace(memberID)]
	if !ok {
		return entities.Member{}, domainerrors.ErrMemberNotFound
	}
	return member.Clone(), nil
}

func (s *Store) EnsureMember(_ context.Context, member entities.Member) (entities.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.members[member.MemberID]
	if !ok {
		created := member.Clone()
		created.CumulativeScore = 0
		created.SubmissionCountInWindow = 0
		created.WindowStartedAt = nil
		created.CompletedTaskIDs = nil
		s.members[created.MemberID] = created
		return created.Clone(), nil
	}
	existing.Email = member.Email
	existing.DisplayName = member.DisplayName
	existing.Active = member.Active
	s.members[existing.MemberID] = existing
	return existing.Clone(), nil
}

func (s *Store) CreateTask(_ context.Context, task entities.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.taskByTitle[task.Title]; exists {
		return domainerrors.ErrDuplicateTask
	}
	s.tasks[task.TaskID] = task
	s.taskByTitle[task.Title] = task.TaskID
	return nil
}

func (s *Store) GetTask(_ context.Context, taskID string) (entities.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[strings.TrimSpace(taskID)]
	if !ok {
		return entities.Task{}, domainerrors.ErrTaskNotFound
	}
	return task, nil
}

func (s *Store) GetTaskByTitle(_ context.Context, title string) (entities.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	taskID, ok := s.taskByTitle[strings.TrimSpace(title)]
	if !ok {
		return entities.Task{}, domainerrors.ErrTaskNotFound
	}
	return s.tasks[taskID], nil
}

func (s *Store) ListTasks(_ context.Context) ([]entities.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		items = append(items, task)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Title < items[j].Title
	})
	return items, nil
}

func (s *Store) CreateSubmission(
	_ context.Context,
	submission entities.Submission,
	admit ports.AdmitFunc,
	event ports.EventEnvelope,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.members[submission.MemberID]
	if !ok {
		return domainerrors.ErrMemberNotFound
	}
	if _, ok := s.tasks[submission.TaskID]; !ok {
		return domainerrors.ErrTaskNotFound
	}
	admitted, err := admit(member.Clone())
	if err != nil {
		return err
	}
	for _, existing := range s.submissions {
		if existing.submission.MemberID == submission.MemberID && existing.submission.TaskID == submission.TaskID {
			return domainerrors.ErrDuplicatePending
		}
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	s.seq++
	s.submissions[submission.SubmissionID] = storedSubmission{submission: submission, seq: s.seq}
	member.SubmissionCountInWindow = admitted.SubmissionCountInWindow
	member.WindowStartedAt = admitted.Clone().WindowStartedAt
	s.members[member.MemberID] = member
	s.appendOutboxLocked(event, payload)
	return nil
}

func (s *Store) GetSubmission(_ context.Context, submissionID string) (entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.submissions[strings.TrimSpace(submissionID)]
	if !ok {
		return entities.Submission{}, domainerrors.ErrSubmissionNotFound
	}
	return item.submission, nil
}

func (s *Store) ListSubmissions(_ context.Context, filter ports.SubmissionFilter) ([]entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	memberID := strings.TrimSpace(filter.MemberID)
	taskID := strings.TrimSpace(filter.TaskID)
	stored := make([]storedSubmission, 0, len(s.submissions))
	for _, item := range s.submissions {
		if memberID != "" && item.submission.MemberID != memberID {
			continue
		}
		if taskID != "" && item.submission.TaskID != taskID {
			continue
		}
		stored = append(stored, item)
	}
	sort.Slice(stored, func(i, j int) bool {
		return stored[i].seq < stored[j].seq
	})
	items := make([]entities.Submission, 0, len(stored))
	for _, item := range stored {
		items = append(items, item.submission)
	}
	return items, nil
}

func (s *Store) TransitionAndDelete(
	ctx context.Context,
	submissionID string,
	outcome entities.Outcome,
	decidedBy string,
	decidedAt time.Time,
	apply ports.ApplyDecisionFunc,
) (entities.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.submissions[strings.TrimSpace(submissionID)]
	if !ok {
		return entities.Decision{}, domainerrors.ErrSubmissionNotFound
	}
	member, ok := s.members[stored.submission.MemberID]
	if !ok {
		return entities.Decision{}, domainerrors.ErrInconsistentState
	}
	task, ok := s.tasks[stored.submission.TaskID]
	if !ok {
		return entities.Decision{}, domainerrors.ErrInconsistentState
	}

	decided := stored.submission
	decided.State = outcome.TerminalState()
	decision := entities.Decision{
		Submission: decided,
		Member:     member.Clone(),
		Task:       task,
		Outcome:    outcome,
		DecidedAt:  decidedAt.UTC(),
		DecidedBy:  decidedBy,
	}

	scope := &decisionScope{store: s, staged: map[string]entities.Member{}}
	if err := apply(ctx, scope, decision); err != nil {
		return entities.Decision{}, err
	}

	for memberID, staged := range scope.staged {
		s.members[memberID] = staged
	}
	s.ledger = append(s.ledger, scope.entries...)
	for _, event := range scope.events {
		payload, err := json.Marshal(event)
		if err != nil {
			return entities.Decision{}, err
		}
		s.appendOutboxLocked(event, payload)
	}
	delete(s.submissions, decided.SubmissionID)
	return decision, nil
}

func (s *Store) ListLedgerEntries(_ context.Context, memberID string) ([]entities.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	memberID = strings.TrimSpace(memberID)
	items := make([]entities.LedgerEntry, 0)
	for _, entry := range s.ledger {
		if entry.MemberID == memberID {
			items = append(items, entry)
		}
	}
	return items, nil
}

func (s *Store) ListLeaderboard(_ context.Context, limit int, offset int) ([]entities.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranked := s.rankedLocked()
	if offset >= len(ranked) {
		return []entities.LeaderboardEntry{}, nil
	}
	ranked = ranked[offset:]
	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (s *Store) MemberRank(_ context.Context, memberID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	memberID = strings.TrimSpace(memberID)
	if _, ok := s.members[memberID]; !ok {
		return 0, domainerrors.ErrMemberNotFound
	}
	for _, entry := range s.rankedLocked() {
		if entry.MemberID == memberID {
			return entry.Rank, nil
		}
	}
	return 0, nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]ports.OutboxMessage, 0)
	for _, row := range s.outbox {
		if row.PublishedAt != nil {
			continue
		}
		items = append(items, row)
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.outbox {
		if s.outbox[i].OutboxID == outboxID {
			at := publishedAt.UTC()
			s.outbox[i].PublishedAt = &at
			return nil
		}
	}
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) appendOutboxLocked(event ports.EventEnvelope, payload []byte) {
	for _, row := range s.outbox {
		if row.OutboxID == event.EventID {
			return
		}
	}
	s.outbox = append(s.outbox, ports.OutboxMessage{
		OutboxID:  event.EventID,
		EventType: event.EventType,
		Payload:   payload,
		CreatedAt: event.OccurredAt,
	})
}

func (s *Store) rankedLocked() []entities.LeaderboardEntry {
	items := make([]entities.LeaderboardEntry, 0, len(s.members))
	for _, member := range s.members {
		if !member.Active {
			continue
		}
		items = append(items, entities.LeaderboardEntry{
			MemberID:        member.MemberID,
			DisplayName:     member.DisplayName,
			CumulativeScore: member.CumulativeScore,
			CompletedTasks:  len(member.CompletedTaskIDs),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CumulativeScore != items[j].CumulativeScore {
			return items[i].CumulativeScore > items[j].CumulativeScore
		}
		if items[i].DisplayName != items[j].DisplayName {
			return items[i].DisplayName < items[j].DisplayName
		}
		return items[i].MemberID < items[j].MemberID
	})
	for i := range items {
		items[i].Rank = i + 1
	}
	return items
}

// decisionScope buffers writes made by an ApplyDecisionFunc. It is only used
// while the store mutex is held.
type decisionScope struct {
	store   *Store
	staged  map[string]entities.Member
	entries []entities.LedgerEntry
	events  []ports.EventEnvelope
}

func (d *decisionScope) member(memberID string) (entities.Member, error) {
	if staged, ok := d.staged[memberID]; ok {
		return staged, nil
	}
	member, ok := d.store.members[memberID]
	if !ok {
		return entities.Member{}, domainerrors.ErrMemberNotFound
	}
	return member.Clone(), nil
}

func (d *decisionScope) Credit(_ context.Context, entry entities.LedgerEntry) (int, error) {
	if entry.Points < 0 {
		return 0, domainerrors.ErrInvalidDecision
	}
	member, err := d.member(entry.MemberID)
	if err != nil {
		return 0, err
	}
	member.CumulativeScore += entry.Points
	d.staged[member.MemberID] = member
	d.entries = append(d.entries, entry)
	return member.CumulativeScore, nil
}

func (d *decisionScope) MarkTaskCompleted(_ context.Context, memberID string, taskID string) error {
	member, err := d.member(memberID)
	if err != nil {
		return err
	}
	d.staged[memberID] = member.WithCompleted(taskID)
	return nil
}

func (d *decisionScope) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	d.events = append(d.events, envelope)
	return nil
}
