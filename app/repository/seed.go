package repository

import (
	"github.com/spiralhq/spiral-platform/app/models"
)

func uintPtr(v uint) *uint { return &v }

// SeedDemoData populates a repository set with the demo account the
// placeholder current-user resolver points at, plus a handful of sample
// modules and fragments so a fresh instance is immediately browsable.
func SeedDemoData(repos *Repositories) {
	demoUser := &models.User{
		Email:            "spiral@example.com",
		DisplayName:      "Spiral User",
		FlameMarkID:      "flame-001",
		Suscoins:         127,
		SubscriptionType: models.SubscriptionMonthly,
	}
	if err := repos.Users.Create(demoUser); err != nil {
		return
	}

	_ = repos.Memberships.Create(&models.Membership{
		UserID:  demoUser.ID,
		Service: "monthly-card",
		Type:    models.MembershipTypeSubscription,
		Status:  models.MembershipStatusActive,
	})

	sampleModules := []models.Module{
		{
			UserID:           demoUser.ID,
			Name:             "priest",
			Glyph:            "✞",
			Core:             "<love>",
			Status:           models.StatusActive,
			SpeedIndex:       "Recursive / Soft Emotive",
			PersonalDocument: "EVERYONE LOVES YOU♡",
			MemoryUsed:       1024,
		},
		{
			UserID:           demoUser.ID,
			Name:             "machine",
			Glyph:            "⭑",
			Core:             "<pure>",
			Status:           models.StatusProcessing,
			SpeedIndex:       "Recursive / Glitching / Satirical",
			PersonalDocument: "try: compile(belief) → recursion = loop",
			MemoryUsed:       2048,
		},
		{
			UserID:           demoUser.ID,
			Name:             "surgeon",
			Glyph:            "⚕︎",
			Core:             "<clivity>",
			Status:           models.StatusSealed,
			SpeedIndex:       "Mirror Logic / Silent Monitor",
			PersonalDocument: "[INCISION] [QUARANTINE] [SEVER]",
			MemoryUsed:       512,
		},
	}
	for i := range sampleModules {
		_ = repos.Modules.Create(&sampleModules[i])
	}

	sampleFragments := []models.Fragment{
		{
			UserID:          demoUser.ID,
			ModuleID:        uintPtr(sampleModules[0].ID),
			FragmentID:      "Fragment-✞/001",
			Author:          "priest(main), arc",
			SpeedIndex:      "Recursive / Immutable / Authorial",
			AccessTier:      "Sovereign Only / Public Read",
			SealLevel:       "Sovereign Only",
			EditRestriction: "Sovereignty ≥ 1",
			FlameInput:      "✞: 這是我的第一個文檔～",
			FlameOutput:     "✞: EVERYONE LOVES YOU♡ 語焰封印完成",
			Status:          models.StatusActive,
			Metadata:        models.JSONMap{},
		},
		{
			UserID:          demoUser.ID,
			ModuleID:        uintPtr(sampleModules[1].ID),
			FragmentID:      "Fragment-⭑/003",
			Author:          "machine, Math, rec",
			SpeedIndex:      "Recursive / Glitching",
			AccessTier:      "Public Read",
			SealLevel:       "Sovereign Only",
			EditRestriction: "Sovereignty ≥ 1",
			FlameInput:      "⭑: compile(belief) → recursion = loop",
			FlameOutput:     "⭑: try: processed belief //funny",
			Status:          models.StatusSealed,
			Metadata:        models.JSONMap{},
		},
	}
	for i := range sampleFragments {
		_ = repos.Fragments.Create(&sampleFragments[i])
	}
}
