package main

import (
	"fmt"
	"strconv"
	"strings"
)

// inputEvent is one value injected into an input port during a run.
type inputEvent struct {
	Port  int
	Value int
}

// parseInputs decodes a "port:value,port:value" sequence, order preserved.
func parseInputs(spec string) ([]inputEvent, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	parts := strings.Split(spec, ",")
	events := make([]inputEvent, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pv := strings.SplitN(part, ":", 2)
		if len(pv) != 2 {
			return nil, fmt.Errorf("invalid input event %q, want port:value", part)
		}
		port, err := strconv.Atoi(strings.TrimSpace(pv[0]))
		if err != nil || port < 0 {
			return nil, fmt.Errorf("invalid input port in %q", part)
		}
		value, err := strconv.Atoi(strings.TrimSpace(pv[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid input value in %q", part)
		}
		events = append(events, inputEvent{Port: port, Value: value})
	}
	return events, nil
}
