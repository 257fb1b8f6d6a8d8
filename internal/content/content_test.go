package content_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardauction/internal/content"
	"cardauction/internal/domain"
)

func TestDefaultContentIsComplete(t *testing.T) {
	c, err := content.Default()
	require.NoError(t, err)

	assert.Len(t, c.Items, domain.MaxItemID)
	assert.Len(t, c.Collectors, domain.MaxCollectorID)
	assert.NotEmpty(t, c.Matches)
	assert.Empty(t, c.UnknownAttributeKeys(), "bundled matches should only use translated keys")

	found := false
	for _, m := range c.Matches {
		if m.ItemID == 1 && m.CollectorID == 2 {
			found = true
			assert.Equal(t, 43, m.Score)
			assert.Len(t, m.Attributes, 4)
		}
	}
	assert.True(t, found, "item 1 / collector 2 entry missing")
}

func TestLoadTOML(t *testing.T) {
	c, err := content.Load(filepath.Join("testdata", "small.toml"))
	require.NoError(t, err)

	require.Len(t, c.Items, 2)
	assert.Equal(t, "Brass Pocket Watch", c.Items[0].TitleEn)
	assert.Equal(t, "", c.Items[1].TitleEn)
	assert.Equal(t, "复古", c.Attributes["vintage"]["zh"])
	require.Len(t, c.Matches, 1)
	assert.Equal(t, []string{"handcrafted", "luxurious", "rare"}, c.UnknownAttributeKeys())
}

func TestLoadRejectsOutOfRangeIDs(t *testing.T) {
	_, err := content.Load(filepath.Join("testdata", "bad_range.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseRejectsBadContent(t *testing.T) {
	cases := map[string]string{
		"negative score":     "matches:\n  - {itemId: 1, collectorId: 1, score: -1}\n",
		"collector range":    "matches:\n  - {itemId: 1, collectorId: 31, score: 1}\n",
		"duplicate pair":     "matches:\n  - {itemId: 1, collectorId: 1, score: 1}\n  - {itemId: 1, collectorId: 1, score: 2}\n",
		"attribute language": "attributes:\n  vintage: {en: Vintage, ja: ヴィンテージ}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := content.Parse([]byte(doc), content.FormatYAML)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestLoadUnknownExtension(t *testing.T) {
	_, err := content.Load("content.json")
	// the file does not exist either; the read error comes first
	require.Error(t, err)

	_, err = content.Parse([]byte("{}"), "json")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
