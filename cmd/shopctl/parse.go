package main

import (
	"fmt"
	"strconv"
	"strings"
)

func parseID(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || value == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(value), nil
}

// parseIDs 解析可重复或逗号分隔的 ID 列表
func parseIDs(values []string) ([]uint, error) {
	ids := make([]uint, 0, len(values))
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, err := parseID(part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no ids given")
	}
	return ids, nil
}

// parseAxisFlags 解析 "1=S,M,L" 形式的规格轴取值，同一轴可重复出现
func parseAxisFlags(values []string) (map[int][]string, error) {
	selections := make(map[int][]string, len(values))
	for _, raw := range values {
		axisRaw, list, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("invalid axis %q, want axis=value,value", raw)
		}
		axis, err := strconv.Atoi(strings.TrimSpace(axisRaw))
		if err != nil || axis <= 0 {
			return nil, fmt.Errorf("invalid axis id %q", axisRaw)
		}
		for _, value := range strings.Split(list, ",") {
			if value = strings.TrimSpace(value); value != "" {
				selections[axis] = append(selections[axis], value)
			}
		}
		if len(selections[axis]) == 0 {
			return nil, fmt.Errorf("axis %d has no values", axis)
		}
	}
	return selections, nil
}
