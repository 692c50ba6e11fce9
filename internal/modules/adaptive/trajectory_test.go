package adaptive

import (
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/pkg/pointers"
)

func TestSyncTrajectoryStatuses(t *testing.T) {
	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	student := uuid.New()
	lessons := []LessonRef{
		{LessonID: uuid.New(), Topic: "A"},
		{LessonID: uuid.New(), Topic: "B"},
		{LessonID: uuid.New(), Topic: "C"},
	}
	metrics := AggregateTopics([]SubmissionEntry{
		entry("A", pointers.Float64(0.9), 0),
		entry("B", pointers.Float64(0.3), 0),
	})

	res := SyncTrajectory(student, lessons, nil, metrics, now)
	if len(res.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(res.Nodes))
	}
	want := []string{types.NodeCompleted, types.NodeReview, types.NodeLocked}
	for i, n := range res.Nodes {
		if n.Status != want[i] {
			t.Fatalf("node %d: status %q, want %q", i, n.Status, want[i])
		}
		if n.OrderIndex != i+1 {
			t.Fatalf("node %d: order %d", i, n.OrderIndex)
		}
		if n.Recommendation != NodeRecommendation(n.Status) {
			t.Fatalf("node %d: recommendation mismatch", i)
		}
	}
	if res.Nodes[0].CompletedAt == nil || res.Nodes[0].UnlockedAt == nil {
		t.Fatalf("completed node should carry both timestamps")
	}
	if res.Nodes[2].UnlockedAt != nil {
		t.Fatalf("locked node should not be unlocked")
	}
	if got := res.CompletionRate; got < 33.33 || got > 33.34 {
		t.Fatalf("completion rate: got %v", got)
	}
}

func TestSyncTrajectoryKeepsTimestampsAndReportsStale(t *testing.T) {
	earlier := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := earlier.Add(72 * time.Hour)
	student := uuid.New()
	kept := uuid.New()
	gone := uuid.New()
	existing := map[uuid.UUID]*types.TrajectoryNode{
		kept: {ID: uuid.New(), StudentID: student, LessonID: kept, RequiredScore: 0.6, Status: types.NodeCompleted, UnlockedAt: &earlier, CompletedAt: &earlier},
		gone: {ID: uuid.New(), StudentID: student, LessonID: gone, RequiredScore: 0.6},
	}

	res := SyncTrajectory(student, []LessonRef{{LessonID: kept, Topic: "A"}}, existing, AggregateTopics(nil), now)
	n := res.Nodes[0]
	if n.Status != types.NodeUnlocked {
		t.Fatalf("expected unlocked without attempts, got %q", n.Status)
	}
	if n.CompletedAt != nil {
		t.Fatalf("completed_at should be cleared")
	}
	if n.UnlockedAt == nil || !n.UnlockedAt.Equal(earlier) {
		t.Fatalf("unlocked_at should be preserved, got %v", n.UnlockedAt)
	}
	if len(res.Stale) != 1 || res.Stale[0].LessonID != gone {
		t.Fatalf("expected one stale node, got %+v", res.Stale)
	}
}

func TestSyncTrajectoryInProgressAfterCompleted(t *testing.T) {
	lessons := []LessonRef{{LessonID: uuid.New(), Topic: "A"}, {LessonID: uuid.New(), Topic: "B"}}
	metrics := AggregateTopics([]SubmissionEntry{
		entry("A", pointers.Float64(0.6), 0),
		entry("B", pointers.Float64(0.55), 0),
	})
	res := SyncTrajectory(uuid.New(), lessons, nil, metrics, time.Now())
	if res.Nodes[0].Status != types.NodeCompleted || res.Nodes[1].Status != types.NodeInProgress {
		t.Fatalf("got %q, %q", res.Nodes[0].Status, res.Nodes[1].Status)
	}
}

func TestSyncTrajectoryEmpty(t *testing.T) {
	res := SyncTrajectory(uuid.New(), nil, nil, nil, time.Now())
	if len(res.Nodes) != 0 || res.CompletionRate != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSyncTrajectoryCarriesLessonTitle(t *testing.T) {
	lesson := &types.Lesson{ID: uuid.New(), Title: "Fractions", Topic: "Math"}
	refs := LessonRefsFromEnrollments([]*types.Enrollment{{LessonID: lesson.ID, Lesson: lesson}})

	res := SyncTrajectory(uuid.New(), refs, nil, AggregateTopics(nil), time.Now())
	if len(res.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(res.Nodes))
	}
	if got := NewNodeView(res.Nodes[0], "").LessonTitle; got != "Fractions" {
		t.Fatalf("new node lesson title: got %q", got)
	}
}
