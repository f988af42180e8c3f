package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/showdown-ml/battle-features/internal/models"
	tu "github.com/showdown-ml/battle-features/internal/testutils"
)

func BenchmarkProcessBatch(b *testing.B) {
	p := newTestPool(NewMockFeatureStore(), NewMockFeatureCache(), nil)

	jobs := make([]Job, 0, 300)
	for i := 0; i < 100; i++ {
		for _, bt := range tu.SampleBattles() {
			bt.BattleID = fmt.Sprintf("%s-%d", bt.BattleID, i)
			jobs = append(jobs, Job{Battle: bt, ReceivedAt: time.Now()})
		}
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := p.processBatch(jobs); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDeduplicate(b *testing.B) {
	p := newTestPool(NewMockFeatureStore(), NewMockFeatureCache(), nil)
	battles := make([]models.Battle, 500)
	for i := range battles {
		battles[i].BattleID = fmt.Sprintf("battle-%d", i)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, _, err := p.Deduplicate(context.Background(), battles); err != nil {
			b.Fatal(err)
		}
	}
}
