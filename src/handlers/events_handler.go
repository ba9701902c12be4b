package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"hearthshare-server/src/events"
)

// StreamHouseholdEvents streams rule-run results for a household as
// server-sent events so dashboards can refresh without polling. The
// subscription is cancelled when the client disconnects.
func StreamHouseholdEvents(bus *events.Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := r.Context().Value("household_id").(int64)

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		sub := bus.Subscribe(events.TransactionsTopic(householdID))
		defer sub.Cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		slog.Info("event stream opened", "household_id", householdID)

		for {
			select {
			case <-r.Context().Done():
				slog.Info("event stream closed", "household_id", householdID)
				return
			case ev, open := <-sub.C:
				if !open {
					return
				}
				payload, err := json.Marshal(ev.Payload)
				if err != nil {
					slog.Error("failed to encode event payload", "topic", ev.Topic, "error", err)
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Topic, payload)
				flusher.Flush()
			}
		}
	}
}
