package ui

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/iconidentify/tubegrab/internal/api/handler"
	"github.com/iconidentify/tubegrab/internal/domain"
)

func TestStateColor(t *testing.T) {
	tests := []struct {
		state string
		want  tcell.Color
		tag   string
	}{
		{"pending", tcell.ColorYellow, "yellow"},
		{"running", tcell.ColorDodgerBlue, "dodgerblue"},
		{"completed", tcell.ColorGreen, "green"},
		{"failed", tcell.ColorRed, "red"},
		{"weird", tcell.ColorWhite, "white"},
	}

	for _, tt := range tests {
		if got := stateColor(tt.state); got != tt.want {
			t.Errorf("stateColor(%q) = %v, want %v", tt.state, got, tt.want)
		}
		if got := stateTag(tt.state); got != tt.tag {
			t.Errorf("stateTag(%q) = %q, want %q", tt.state, got, tt.tag)
		}
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if got := relativeTime(time.Time{}, now); got != "-" {
		t.Errorf("zero time = %q, want -", got)
	}
	if got := relativeTime(now.Add(-3*time.Minute), now); got != "3 minutes ago" {
		t.Errorf("relativeTime = %q, want %q", got, "3 minutes ago")
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"héllo wörld", 8, "héllo..."},
		{"abcdef", 2, "ab"},
	}

	for _, tt := range tests {
		if got := truncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestNextFilter(t *testing.T) {
	got := []string{}
	f := ""
	for i := 0; i < len(stateFilters); i++ {
		f = nextFilter(f)
		got = append(got, f)
	}
	want := []string{"pending", "running", "completed", "failed", ""}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("filter cycle = %v, want %v", got, want)
		}
	}
	if nextFilter("bogus") != "" {
		t.Error("unknown filter should reset to all")
	}
}

func TestFilterJobs(t *testing.T) {
	jobs := []handler.JobResponse{
		{DownloadID: "a", Status: "running"},
		{DownloadID: "b", Status: "failed"},
		{DownloadID: "c", Status: "running"},
	}

	if got := filterJobs(jobs, ""); len(got) != 3 {
		t.Errorf("no filter returned %d jobs, want 3", len(got))
	}
	got := filterJobs(jobs, "running")
	if len(got) != 2 || got[0].DownloadID != "a" || got[1].DownloadID != "c" {
		t.Errorf("running filter = %+v", got)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID = %q", got)
	}
}

func TestOptionLabel(t *testing.T) {
	opt := domain.DownloadOption{Type: domain.OptionTypeVideo, Quality: "1080p", Size: "120 MB", FormatID: "37", Recommended: true}
	got := optionLabel(opt)
	want := "VIDEO 1080p      120 MB  (37)  recommended"
	if got != want {
		t.Errorf("optionLabel = %q, want %q", got, want)
	}
}
