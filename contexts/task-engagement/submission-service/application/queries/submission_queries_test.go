package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"questboard/contexts/task-engagement/submission-service/adapters/memory"
	"questboard/contexts/task-engagement/submission-service/domain/entities"
	domainerrors "questboard/contexts/task-engagement/submission-service/domain/errors"
	"questboard/contexts/task-engagement/submission-service/domain/services"
	"questboard/contexts/task-engagement/submission-service/ports"
	contractsv1 "questboard/contracts/gen/events/v1"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

var queryNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func newQueryFixture(t *testing.T) (*memory.Store, QueryUseCase) {
	t.Helper()
	started := queryNow.Add(-2 * time.Hour)
	store := memory.NewStore(memory.Seed{
		Members: []entities.Member{
			{MemberID: "m-ann", DisplayName: "Ann", Active: true, CumulativeScore: 80, CompletedTaskIDs: []string{"t-1", "t-2"}, SubmissionCountInWindow: 2, WindowStartedAt: &started},
			{MemberID: "m-ben", DisplayName: "Ben", Active: true, CumulativeScore: 80},
			{MemberID: "m-cat", DisplayName: "Cat", Active: true, CumulativeScore: 120},
			{MemberID: "m-dan", DisplayName: "Dan", Active: false, CumulativeScore: 500},
		},
		Tasks: []entities.Task{
			{TaskID: "t-1", Title: "Plant a tree", PointValue: 50},
			{TaskID: "t-2", Title: "Clean the park", PointValue: 30},
		},
	})
	return store, QueryUseCase{
		Repository: store,
		Gate:       services.NewSubmissionGate(3, 24*time.Hour),
		Clock:      fixedClock{now: queryNow},
	}
}

func admitAll(member entities.Member) (entities.Member, error) { return member, nil }

func createPending(t *testing.T, store *memory.Store, submissionID string, memberID string, taskID string) {
	t.Helper()
	event, err := contractsv1.New("evt-"+submissionID, "submission.created", "test", "submission_id", submissionID, queryNow, map[string]any{"submission_id": submissionID})
	if err != nil {
		t.Fatalf("build event: %v", err)
	}
	err = store.CreateSubmission(context.Background(), entities.Submission{
		SubmissionID:  submissionID,
		MemberID:      memberID,
		TaskID:        taskID,
		BlobReference: "mem://test/" + submissionID,
		State:         entities.SubmissionStatePending,
		CreatedAt:     queryNow,
	}, admitAll, event)
	if err != nil {
		t.Fatalf("create submission %s: %v", submissionID, err)
	}
}

func TestLeaderboardRanksActiveMembersWithNameTieBreak(t *testing.T) {
	_, uc := newQueryFixture(t)

	entries, err := uc.Leaderboard(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected inactive member to be excluded, got %d entries", len(entries))
	}
	want := []string{"m-cat", "m-ann", "m-ben"}
	for i, entry := range entries {
		if entry.MemberID != want[i] || entry.Rank != i+1 {
			t.Fatalf("position %d: expected %s rank %d, got %+v", i, want[i], i+1, entry)
		}
	}
	if entries[1].CompletedTasks != 2 {
		t.Fatalf("expected completed task count, got %d", entries[1].CompletedTasks)
	}

	page, err := uc.Leaderboard(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("leaderboard page: %v", err)
	}
	if len(page) != 1 || page[0].MemberID != "m-ann" || page[0].Rank != 2 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestMemberStandingReportsRankAndQuota(t *testing.T) {
	_, uc := newQueryFixture(t)

	standing, err := uc.MemberStanding(context.Background(), "m-ann")
	if err != nil {
		t.Fatalf("standing: %v", err)
	}
	if standing.Rank != 2 || standing.RemainingQuota != 1 {
		t.Fatalf("unexpected standing %+v", standing)
	}
	if standing.WindowResetsAt == nil || !standing.WindowResetsAt.Equal(queryNow.Add(22*time.Hour)) {
		t.Fatalf("unexpected reset time %v", standing.WindowResetsAt)
	}

	if _, err := uc.MemberStanding(context.Background(), "m-nobody"); !errors.Is(err, domainerrors.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestListSubmissionsResolvesOwnerAndTask(t *testing.T) {
	store, uc := newQueryFixture(t)
	createPending(t, store, "s-1", "m-ben", "t-1")
	createPending(t, store, "s-2", "m-cat", "t-2")
	createPending(t, store, "s-3", "m-cat", "t-1")

	views, err := uc.ListSubmissions(context.Background())
	if err != nil {
		t.Fatalf("list submissions: %v", err)
	}
	if len(views) != 3 || views[0].Submission.SubmissionID != "s-1" || views[2].Submission.SubmissionID != "s-3" {
		t.Fatalf("expected creation order, got %+v", views)
	}
	if views[0].Member.DisplayName != "Ben" || views[0].Task.Title != "Plant a tree" {
		t.Fatalf("expected resolved view, got %+v", views[0])
	}

	byTask, err := uc.ListSubmissionsByTask(context.Background(), "Plant a tree")
	if err != nil {
		t.Fatalf("list by task: %v", err)
	}
	if len(byTask) != 2 {
		t.Fatalf("expected 2 submissions for task, got %d", len(byTask))
	}
	if _, err := uc.ListSubmissionsByTask(context.Background(), "Unknown"); !errors.Is(err, domainerrors.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

// orphanRepository hides one member so a pending submission dangles.
type orphanRepository struct {
	ports.Repository
	missingMember string
}

func (r orphanRepository) GetMember(ctx context.Context, memberID string) (entities.Member, error) {
	if memberID == r.missingMember {
		return entities.Member{}, domainerrors.ErrMemberNotFound
	}
	return r.Repository.GetMember(ctx, memberID)
}

func TestOrphanedSubmissionSurfacesInconsistentState(t *testing.T) {
	store, uc := newQueryFixture(t)
	createPending(t, store, "s-1", "m-ben", "t-1")
	uc.Repository = orphanRepository{Repository: store, missingMember: "m-ben"}

	if _, err := uc.ListSubmissions(context.Background()); !errors.Is(err, domainerrors.ErrInconsistentState) {
		t.Fatalf("expected ErrInconsistentState, got %v", err)
	}
	if _, err := uc.GetSubmission(context.Background(), "s-1"); !errors.Is(err, domainerrors.ErrInconsistentState) {
		t.Fatalf("expected ErrInconsistentState, got %v", err)
	}
}
