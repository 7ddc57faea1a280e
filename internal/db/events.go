package db

import (
	"fmt"

	"partylobby/internal/events"
)

const insertEvent = `
	INSERT INTO lobby_events (id, kind, room_code, player_name, conn_id, occurred_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO NOTHING
`

func (d *DB) RecordEvent(ev events.Event) error {
	_, err := d.conn.Exec(insertEvent, ev.ID, string(ev.Kind), ev.RoomCode, ev.PlayerName, ev.ConnID, ev.At)
	if err != nil {
		return fmt.Errorf("recording event: %w", err)
	}
	return nil
}

func (d *DB) BatchRecordEvents(batch []events.Event) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertEvent)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, ev := range batch {
		if _, err := stmt.Exec(ev.ID, string(ev.Kind), ev.RoomCode, ev.PlayerName, ev.ConnID, ev.At); err != nil {
			return fmt.Errorf("recording event in batch: %w", err)
		}
	}

	return tx.Commit()
}
