package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"nodup/internal/models"
)

func TestRenderOutcome(t *testing.T) {
	r := NewRenderer()

	assert.Empty(t, r.RenderOutcome(nil))
	assert.Empty(t, r.RenderOutcome(&models.Outcome{Status: models.OutcomeNew, Record: &models.OccurrenceRecord{Count: 1}}))

	reply := r.RenderOutcome(&models.Outcome{
		Status: models.OutcomeRepeat,
		Record: &models.OccurrenceRecord{Count: 3, FirstLink: "https://t.me/c/42/1/"},
	})
	assert.Equal(t, "Repost! This has been shared here 3 times. First seen at: https://t.me/c/42/1/", reply)

	reply = r.RenderOutcome(&models.Outcome{Status: models.OutcomeRepeat, Record: &models.OccurrenceRecord{Count: 2}})
	assert.True(t, strings.HasSuffix(reply, "First seen in a private chat."))
}

func TestRenderBoards(t *testing.T) {
	r := NewRenderer()
	rows := []models.LeaderboardRow{
		{Rank: 1, Label: "https://x/y", Count: 10},
		{Rank: 2, Label: "https://x/z", Count: 9},
	}

	topics := r.RenderTopics(rows)
	assert.True(t, strings.HasPrefix(topics, topicsHeader))
	assert.Contains(t, topics, "1.   10 times:   https://x/y\n")
	assert.Equal(t, 2, strings.Count(topics, "\n")-strings.Count(topicsHeader, "\n"))

	users := r.RenderUsers([]models.LeaderboardRow{{Rank: 1, Label: "Alice", Count: 4}})
	assert.Equal(t, usersHeader+"1. Alice reposted 4 times\n", users)

	assert.Equal(t, emptyBoard, r.RenderTopics(nil))
	assert.Equal(t, emptyBoard, r.RenderUsers(nil))
}

func TestRenderUserCount(t *testing.T) {
	r := NewRenderer()
	assert.Equal(t, "You have reposted 5 times.", r.RenderUserCount(5))
	assert.Contains(t, r.RenderUserCount(0), "not reposted")
}
