package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardenhub/backend/domain"
)

type errRow struct{ err error }

func (r errRow) Scan(...interface{}) error { return r.err }

func TestScanMapsMissingRowsPerEntity(t *testing.T) {
	noRows := errRow{err: pgx.ErrNoRows}

	_, err := scanUser(noRows)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = scanGarden(noRows)
	assert.ErrorIs(t, err, domain.ErrGardenNotFound)

	_, err = scanPlot(noRows)
	assert.ErrorIs(t, err, domain.ErrPlotNotFound)

	_, err = scanOrder(noRows)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = scanPick(noRows)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPickNotFound)
	assert.NotErrorIs(t, err, domain.ErrOrderNotFound)
}
