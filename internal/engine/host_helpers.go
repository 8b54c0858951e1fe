package engine

import (
	"context"

	"github.com/briarwatch/survivalcore/internal/hostport"
	"github.com/briarwatch/survivalcore/internal/platform/logger"
)

// scheduleHost posts run to the host thread via ScheduleOnHostThread,
// logging (not propagating) any adapter exception per §7's "best-effort"
// policy. versionKey/capturedVersion are zero-valued for non-versioned
// callers; only the Permanent Buff Manager (C16) populates them.
func scheduleHost(ctx context.Context, host hostport.HostAdapter, log *logger.Logger, playerID string, versionKey string, capturedVersion uint64, run func()) {
	err := host.ScheduleOnHostThread(ctx, hostport.HostAction{
		PlayerID:        playerID,
		VersionKey:      versionKey,
		CapturedVersion: capturedVersion,
		Run:             run,
	})
	if err != nil {
		log.Warn("ScheduleOnHostThread failed for " + playerID + ": " + err.Error())
	}
}

// sendChat is a thin best-effort wrapper matching §7's "caught, logged
// WARNING, not propagated" policy for chat, which is not a stat/speed
// operation and so does not require scheduleOnHostThread (§4.3).
func sendChat(ctx context.Context, host hostport.HostAdapter, log *logger.Logger, playerID, text, colorTag string) {
	if err := host.SendChat(ctx, playerID, text, colorTag); err != nil {
		log.Warn("SendChat failed for " + playerID + ": " + err.Error())
	}
}
