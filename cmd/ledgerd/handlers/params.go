package handlers

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lyzr/crewledger/common/ledger"
	"github.com/lyzr/crewledger/common/rotation"
)

func parseCrew(c echo.Context) (rotation.Crew, error) {
	return rotation.ParseCrew(c.Param("crew"))
}

func parseYear(c echo.Context) (int, error) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1 || year > 9999 {
		return 0, &paramError{msg: fmt.Sprintf("invalid year %q", c.Param("year"))}
	}
	return year, nil
}

func parseMonth(raw string) (int, error) {
	month, err := strconv.Atoi(raw)
	if err != nil || month < 1 || month > 12 {
		return 0, &paramError{msg: fmt.Sprintf("invalid month %q", raw)}
	}
	return month, nil
}

// parseFromMonth reads an optional month, defaulting to January
func parseFromMonth(raw string) (int, error) {
	if raw == "" {
		return 1, nil
	}
	return parseMonth(raw)
}

func parseKind(c echo.Context) (ledger.ScheduleKind, error) {
	kind, err := ledger.ParseScheduleKind(c.Param("kind"))
	if err != nil {
		return "", &paramError{msg: err.Error()}
	}
	return kind, nil
}

// parseKey reads /:kind/:crew/:year
func parseKey(c echo.Context) (ledger.PartitionKey, error) {
	kind, err := parseKind(c)
	if err != nil {
		return ledger.PartitionKey{}, err
	}
	crew, err := parseCrew(c)
	if err != nil {
		return ledger.PartitionKey{}, err
	}
	year, err := parseYear(c)
	if err != nil {
		return ledger.PartitionKey{}, err
	}
	return ledger.PartitionKey{Kind: kind, Crew: crew, Year: year}, nil
}

// parseContext reads /:kind/:crew/:year/months/:month
func parseContext(c echo.Context) (ledger.ScheduleContext, error) {
	key, err := parseKey(c)
	if err != nil {
		return ledger.ScheduleContext{}, err
	}
	month, err := parseMonth(c.Param("month"))
	if err != nil {
		return ledger.ScheduleContext{}, err
	}
	return ledger.ScheduleContext{Crew: key.Crew, Month: month, Year: key.Year, Kind: key.Kind}, nil
}

// memberName returns the unescaped :name parameter
func memberName(c echo.Context) string {
	raw := c.Param("name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}
