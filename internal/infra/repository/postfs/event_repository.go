package postfs

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kokoromi/redraft/internal/domain/repository"
	infrafs "github.com/kokoromi/redraft/internal/infra/fs"
)

type eventRepository struct {
	s *Store
}

func (r *eventRepository) Append(ctx context.Context, event *repository.Event) error {
	if event.Timestamp == "" {
		event.Timestamp = r.s.now().UTC().Format(time.RFC3339Nano)
	}
	if err := infrafs.AppendNDJSONLine(r.s.fs, r.s.eventsPath(), event); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (r *eventRepository) Load(ctx context.Context) ([]*repository.Event, error) {
	f, err := r.s.fs.Open(r.s.eventsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open events journal: %w", err)
	}
	defer f.Close()

	var events []*repository.Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev repository.Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue // torn or corrupt line, keep reading
		}
		events = append(events, &ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read events journal: %w", err)
	}
	return events, nil
}
