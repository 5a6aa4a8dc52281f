package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/crewledger/common/ledger"
	"github.com/lyzr/crewledger/common/lock"
	"github.com/lyzr/crewledger/common/logger"
	"github.com/lyzr/crewledger/common/partition"
	"github.com/lyzr/crewledger/common/rotation"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seed(t *testing.T, dir string) {
	t.Helper()
	ctx := context.Background()
	e := ledger.NewEngine(partition.NewFileStore(dir), lock.NewKeyedMutex(time.Second), logger.Discard())
	sc := ledger.ScheduleContext{Crew: rotation.CrewA, Month: 12, Year: 2024, Kind: ledger.Overtime}

	require.NoError(t, e.AddMember(ctx, sc, "Smith"))
	require.NoError(t, e.AddMember(ctx, sc, "Jones"))
	require.NoError(t, e.SaveMonth(ctx, sc, []ledger.MemberLedger{
		{Name: "Smith", Working: []ledger.Cell{ledger.Hours(5)}},
		{Name: "Jones", Asking: []ledger.Cell{{}, ledger.Hours(12)}},
	}))
}

func TestShiftsCmd(t *testing.T) {
	out, err := run(t, "shifts", "--crew", "a", "--year", "2023", "--month", "6")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 31)
	assert.Contains(t, lines[22], "2023-06-22")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[22]), "D"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[29]), "-"))
}

func TestShiftsCmd_RejectsCrew(t *testing.T) {
	_, err := run(t, "shifts", "--crew", "E", "--year", "2024", "--month", "1")
	var ce *rotation.InvalidCrewError
	assert.ErrorAs(t, err, &ce)
}

func TestShowCmd(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir)

	out, err := run(t, "--data-dir", dir, "show", "--crew", "A", "--year", "2024", "--month", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "OT_A_2024 month 12")
	assert.Regexp(t, `Smith\s+0\s+0\s+5\s+-\s+5\s+5`, out)
	assert.Regexp(t, `Jones\s+0\s+0\s+-\s+\. 12\s+0\s+12`, out)
}

func TestRankCmd(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir)

	out, err := run(t, "--data-dir", dir, "rank", "--crew", "A", "--year", "2024", "--month", "12")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Regexp(t, `^1\s+Jones`, lines[1])
	assert.Regexp(t, `^2\s+Smith`, lines[2])

	out, err = run(t, "--data-dir", dir, "rank", "--crew", "A", "--year", "2024", "--month", "12",
		"--by", "working", "--filter", "member.total_working > 0")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Regexp(t, `^1\s+Smith`, lines[1])

	_, err = run(t, "--data-dir", dir, "rank", "--crew", "A", "--year", "2024", "--month", "12", "--by", "age")
	assert.Error(t, err)
}

func TestRolloverCmd(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir)

	out, err := run(t, "--data-dir", dir, "rollover", "--crew", "A", "--year", "2024")
	require.NoError(t, err)
	assert.Contains(t, out, "created OT_A_2025 with 2 crew members")
	assert.FileExists(t, partition.NewFileStore(dir).Path("OT_A_2025"))

	_, err = run(t, "--data-dir", dir, "rollover", "--crew", "A", "--year", "2030")
	assert.ErrorIs(t, err, ledger.ErrPartitionNotFound)
}
