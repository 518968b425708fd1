package i18n_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"report-bot/internal/i18n"
)

func TestT_DefaultLocaleIsJapanese(t *testing.T) {
	require.NoError(t, i18n.Init("ja"))
	ctx := context.Background()

	assert.Equal(t, "合計：3名\n出勤：2名", i18n.T(ctx, "card.attendance.totals", map[string]any{"Total": 3, "Working": 2}))
	assert.Equal(t, "欠勤：無し", i18n.T(ctx, "card.attendance.leave_none"))
}

func TestT_ContextLocaleOverrides(t *testing.T) {
	require.NoError(t, i18n.Init("ja"))
	ctx := i18n.WithLocale(context.Background(), "en")

	assert.Equal(t, "en", i18n.LocaleFromContext(ctx))
	assert.Equal(t, "Late: none", i18n.T(ctx, "card.attendance.late_none"))
}

func TestT_UnknownIDFallsBackToID(t *testing.T) {
	require.NoError(t, i18n.Init(""))
	assert.Equal(t, "no.such.message", i18n.T(context.Background(), "no.such.message"))
}
