package adaptive

import (
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/edupulse-backend/internal/domain"
)

const reviewMasteryThreshold = 0.5

// LessonRef is one enrolled lesson, in enrollment order.
type LessonRef struct {
	LessonID uuid.UUID
	Title    string
	Topic    string
	Lesson   *types.Lesson
}

func LessonRefsFromEnrollments(rows []*types.Enrollment) []LessonRef {
	out := make([]LessonRef, 0, len(rows))
	for _, en := range rows {
		if en == nil {
			continue
		}
		ref := LessonRef{LessonID: en.LessonID, Topic: GeneralTopic}
		if en.Lesson != nil {
			ref.Title = en.Lesson.Title
			ref.Lesson = en.Lesson
			ref.Topic = LessonTopic(en.Lesson)
		}
		out = append(out, ref)
	}
	return out
}

type TrajectoryResult struct {
	// Nodes are in order_index order; entries without an ID are new.
	Nodes []*types.TrajectoryNode
	// Stale are existing nodes whose lesson is no longer enrolled.
	Stale          []*types.TrajectoryNode
	CompletionRate float64
}

// SyncTrajectory derives node status from topic metrics. Existing nodes are keyed by lesson
// and mutated in place so unlocked_at survives across recomputes.
func SyncTrajectory(studentID uuid.UUID, lessons []LessonRef, existing map[uuid.UUID]*types.TrajectoryNode, metrics TopicMetrics, now time.Time) TrajectoryResult {
	res := TrajectoryResult{Nodes: make([]*types.TrajectoryNode, 0, len(lessons))}
	seen := make(map[uuid.UUID]bool, len(lessons))

	prevCompleted := true
	completed := 0
	for _, ref := range lessons {
		if seen[ref.LessonID] {
			continue
		}
		seen[ref.LessonID] = true
		idx := len(res.Nodes) + 1

		node := existing[ref.LessonID]
		if node == nil {
			node = &types.TrajectoryNode{
				StudentID:     studentID,
				LessonID:      ref.LessonID,
				RequiredScore: types.DefaultRequiredScore,
			}
		}
		if node.RequiredScore == 0 {
			node.RequiredScore = types.DefaultRequiredScore
		}

		if ref.Lesson != nil {
			node.Lesson = ref.Lesson
		}

		m := metrics.Get(ref.Topic)
		node.Topic = ref.Topic
		node.OrderIndex = idx
		node.Mastery = m.AvgScore

		canAccess := idx == 1 || prevCompleted
		if m.Attempts > 0 && node.Mastery >= node.RequiredScore {
			node.Status = types.NodeCompleted
			if node.CompletedAt == nil {
				t := now
				node.CompletedAt = &t
			}
		} else {
			node.CompletedAt = nil
			switch {
			case !canAccess:
				node.Status = types.NodeLocked
			case m.Attempts == 0:
				node.Status = types.NodeUnlocked
			case node.Mastery < reviewMasteryThreshold:
				node.Status = types.NodeReview
			default:
				node.Status = types.NodeInProgress
			}
		}
		if node.Status != types.NodeLocked && node.UnlockedAt == nil {
			t := now
			node.UnlockedAt = &t
		}
		node.Recommendation = NodeRecommendation(node.Status)

		if node.Status == types.NodeCompleted {
			completed++
		}
		prevCompleted = node.Status == types.NodeCompleted
		res.Nodes = append(res.Nodes, node)
	}

	for lessonID, node := range existing {
		if !seen[lessonID] && node != nil {
			res.Stale = append(res.Stale, node)
		}
	}
	if len(res.Nodes) > 0 {
		res.CompletionRate = float64(completed) / float64(len(res.Nodes)) * 100
	}
	return res
}

func NodeRecommendation(status string) string {
	switch status {
	case types.NodeLocked:
		return "This topic unlocks once the previous module is completed."
	case types.NodeReview:
		return "Needs review: start with an easier task."
	case types.NodeInProgress:
		return "Complete another task to raise your progress."
	case types.NodeCompleted:
		return "Module completed successfully."
	default:
		return "Module is open, you can start working on it."
	}
}
