package notify

import (
	"fmt"
	"strings"

	"nodup/internal/models"
)

const (
	topicsHeader = "Most reposted topics:\n\n"
	usersHeader  = "Top reposters:\n\n"
	emptyBoard   = "Nothing has been reposted here yet."
)

type RendererInterface interface {
	RenderOutcome(o *models.Outcome) string
	RenderTopics(rows []models.LeaderboardRow) string
	RenderUsers(rows []models.LeaderboardRow) string
	RenderUserCount(count int64) string
}

// Renderer formats replies. It never delivers them.
type Renderer struct{}

func NewRenderer() RendererInterface {
	return &Renderer{}
}

// RenderOutcome returns the reply for a repeat and an empty string for every other status.
func (r *Renderer) RenderOutcome(o *models.Outcome) string {
	if o == nil || o.Status != models.OutcomeRepeat || o.Record == nil {
		return ""
	}
	where := "First seen in a private chat."
	if o.Record.FirstLink != "" {
		where = "First seen at: " + o.Record.FirstLink
	}
	return fmt.Sprintf("Repost! This has been shared here %d times. %s", o.Record.Count, where)
}

func (r *Renderer) RenderTopics(rows []models.LeaderboardRow) string {
	if len(rows) == 0 {
		return emptyBoard
	}
	var b strings.Builder
	b.WriteString(topicsHeader)
	for _, row := range rows {
		fmt.Fprintf(&b, "%-4s %-11s %s\n", fmt.Sprintf("%d.", row.Rank), fmt.Sprintf("%d times:", row.Count), row.Label)
	}
	return b.String()
}

func (r *Renderer) RenderUsers(rows []models.LeaderboardRow) string {
	if len(rows) == 0 {
		return emptyBoard
	}
	var b strings.Builder
	b.WriteString(usersHeader)
	for _, row := range rows {
		fmt.Fprintf(&b, "%d. %s reposted %d times\n", row.Rank, row.Label, row.Count)
	}
	return b.String()
}

func (r *Renderer) RenderUserCount(count int64) string {
	if count <= 0 {
		return "Congratulations, you have not reposted anything yet!"
	}
	return fmt.Sprintf("You have reposted %d times.", count)
}
