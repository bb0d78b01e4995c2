package report

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"pulse/internal/tracker"
)

func ts(day, hour int) time.Time {
	return time.Date(2025, 4, day, hour, 0, 0, 0, time.UTC)
}

func TestGatherCommentsSortsNewestFirstAndCutsAtLimit(t *testing.T) {
	fake := newFakeTracker()
	fake.projectTasks["p1"] = []tracker.Task{
		{GID: "t1"}, {GID: "t2"},
	}
	fake.stories["t1"] = []tracker.Story{
		{ResourceSubtype: "comment", CreatedAt: ts(1, 9), Text: "oldest"},
		{ResourceSubtype: "comment", CreatedAt: ts(3, 9), Text: "newest"},
		{ResourceSubtype: "added_to_project", CreatedAt: ts(4, 9), Text: "system noise"},
	}
	fake.stories["t2"] = []tracker.Story{
		{ResourceSubtype: "comment", CreatedAt: ts(2, 9), Text: "middle"},
		{ResourceSubtype: "comment", CreatedAt: ts(1, 8), Text: "dropped by limit"},
	}

	pipe := newTestPipeline(fake, testOptions())
	got := pipe.gatherComments(context.Background(), "p1")

	want := []string{"newest", "middle", "oldest"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestGatherCommentsFailedTaskFetchIsIsolated(t *testing.T) {
	fake := newFakeTracker()
	var tasks []tracker.Task
	for i := 1; i <= 10; i++ {
		gid := fmt.Sprintf("t%d", i)
		tasks = append(tasks, tracker.Task{GID: gid})
		fake.stories[gid] = []tracker.Story{
			{ResourceSubtype: "comment", CreatedAt: ts(i, 9), Text: fmt.Sprintf("update %d", i)},
		}
	}
	fake.projectTasks["p1"] = tasks
	fake.failStories["t7"] = true

	opts := testOptions()
	opts.CommentLimit = 10
	pipe := newTestPipeline(fake, opts)
	got := pipe.gatherComments(context.Background(), "p1")

	want := []string{
		"update 10", "update 9", "update 8", "update 6", "update 5",
		"update 4", "update 3", "update 2", "update 1",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestGatherCommentsOrderIndependentOfCompletionOrder(t *testing.T) {
	build := func(delays map[string]time.Duration) []string {
		fake := newFakeTracker()
		fake.projectTasks["p1"] = []tracker.Task{{GID: "t1"}, {GID: "t2"}, {GID: "t3"}}
		fake.stories["t1"] = []tracker.Story{{ResourceSubtype: "comment", CreatedAt: ts(3, 9), Text: "from t1"}}
		fake.stories["t2"] = []tracker.Story{{ResourceSubtype: "comment", CreatedAt: ts(2, 9), Text: "from t2"}}
		fake.stories["t3"] = []tracker.Story{{ResourceSubtype: "comment", CreatedAt: ts(1, 9), Text: "from t3"}}
		fake.storyDelay = delays

		opts := testOptions()
		opts.FetchWorkers = 3
		pipe := newTestPipeline(fake, opts)
		return pipe.gatherComments(context.Background(), "p1")
	}

	fast := build(nil)
	slowFirst := build(map[string]time.Duration{"t1": 30 * time.Millisecond})
	slowLast := build(map[string]time.Duration{"t3": 30 * time.Millisecond})

	if !reflect.DeepEqual(fast, slowFirst) || !reflect.DeepEqual(fast, slowLast) {
		t.Fatalf("reduction depends on completion order:\nfast=%v\nslowFirst=%v\nslowLast=%v",
			fast, slowFirst, slowLast)
	}
}

func TestGatherCommentsEqualTimestampsKeepTaskOrder(t *testing.T) {
	fake := newFakeTracker()
	fake.projectTasks["p1"] = []tracker.Task{{GID: "a"}, {GID: "b"}}
	same := ts(5, 12)
	fake.stories["a"] = []tracker.Story{{ResourceSubtype: "comment", CreatedAt: same, Text: "first listed"}}
	fake.stories["b"] = []tracker.Story{{ResourceSubtype: "comment", CreatedAt: same, Text: "second listed"}}

	pipe := newTestPipeline(fake, testOptions())
	got := pipe.gatherComments(context.Background(), "p1")

	want := []string{"first listed", "second listed"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected stable tie order %v, got %v", want, got)
	}
}

func TestGatherCommentsProjectTaskListingFailure(t *testing.T) {
	fake := newFakeTracker()
	fake.failTasks["p1"] = true

	pipe := newTestPipeline(fake, testOptions())
	if got := pipe.gatherComments(context.Background(), "p1"); got != nil {
		t.Fatalf("expected nil comments on listing failure, got %v", got)
	}
}

func TestFlattenText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "multi-line", in: "line one\nline two", want: "line one line two"},
		{name: "windows line breaks", in: "a\r\nb\rc", want: "a b c"},
		{name: "surrounding whitespace", in: "\nnote\n", want: "note"},
		{name: "plain", in: "already flat", want: "already flat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := flattenText(tt.in); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
