package app

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pscheid92/postpulse/internal/domain"
	"github.com/pscheid92/postpulse/internal/schedule"
)

const cacheKeyPrefix = "recommendations"

// cacheKey identifies a run by everything that shapes its result: the history window (order
// independent), the signal and its source, engine parameters, top-N, hashtag and the current hour.
func cacheKey(in runInput, p schedule.Params) string {
	observations := slices.Clone(in.observations)
	slices.SortFunc(observations, func(a, b domain.Observation) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		if c := cmp.Compare(a.EngagementCount, b.EngagementCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Platform, b.Platform)
	})

	h := sha256.New()
	for _, o := range observations {
		fmt.Fprintf(h, "obs|%d.%09d|%d|%s\n", o.Timestamp.Unix(), o.Timestamp.Nanosecond(), o.EngagementCount, o.Platform)
	}
	fmt.Fprintf(h, "signal|%v|%v|%s|%s\n", in.signal.Polarity, in.signal.Confidence, strings.Join(in.signal.Topics, ","), in.source)

	loc := "UTC"
	if p.Location != nil {
		loc = p.Location.String()
	}
	fmt.Fprintf(h, "params|%v|%v|%v|%v|%d|%s\n", p.DecayLambda, p.SentimentInfluence, p.ConfidenceK, p.VariancePenaltyThreshold, p.MinSlotSpacingHours, loc)
	fmt.Fprintf(h, "run|%d|%s|%d\n", in.topN, in.hashtag, in.now.Truncate(time.Hour).Unix())

	account := in.accountID
	if account == "" {
		account = "_"
	}
	return cacheKeyPrefix + ":" + account + ":" + hex.EncodeToString(h.Sum(nil))
}
