package repositories

import (
	"encoding/json"
	"fmt"
	"supply-chain-optimizer/internal/domain"
)

// JSON columns of an optimization_runs row, shared by the Postgres and
// SQLite run repositories.
type runColumns struct {
	ports string
	costs string
	host  string
}

func encodeRunColumns(rec domain.RunRecord) (runColumns, error) {
	ports, err := json.Marshal(nonNil(rec.SelectedPorts))
	if err != nil {
		return runColumns{}, fmt.Errorf("encode ports: %w", err)
	}
	costs, err := json.Marshal(rec.Costs)
	if err != nil {
		return runColumns{}, fmt.Errorf("encode costs: %w", err)
	}
	host, err := json.Marshal(rec.Host)
	if err != nil {
		return runColumns{}, fmt.Errorf("encode host: %w", err)
	}
	return runColumns{ports: string(ports), costs: string(costs), host: string(host)}, nil
}

func decodeRunColumns(rec *domain.RunRecord, ports, costs, host []byte) error {
	if err := json.Unmarshal(ports, &rec.SelectedPorts); err != nil {
		return fmt.Errorf("run %d ports: %w", rec.ID, err)
	}
	if err := json.Unmarshal(costs, &rec.Costs); err != nil {
		return fmt.Errorf("run %d costs: %w", rec.ID, err)
	}
	if err := json.Unmarshal(host, &rec.Host); err != nil {
		return fmt.Errorf("run %d host: %w", rec.ID, err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
