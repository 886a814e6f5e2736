package model

import (
	"fmt"

	"gorm.io/gorm"
)

func intPtr(v int) *int { return &v }

// Seed 写入基础数据：组别、弓种、类别矩阵与示例轮（幂等，存在则跳过）
func Seed(db *gorm.DB) error {
	classes := []Class{
		{Name: "Male Open", AgeMin: intPtr(18), AgeMax: intPtr(49), Gender: "Male"},
		{Name: "Female Open", AgeMin: intPtr(18), AgeMax: intPtr(49), Gender: "Female"},
		{Name: "50+ Male", AgeMin: intPtr(50), AgeMax: intPtr(59), Gender: "Male"},
		{Name: "50+ Female", AgeMin: intPtr(50), AgeMax: intPtr(59), Gender: "Female"},
		{Name: "60+ Male", AgeMin: intPtr(60), AgeMax: intPtr(69), Gender: "Male"},
		{Name: "60+ Female", AgeMin: intPtr(60), AgeMax: intPtr(69), Gender: "Female"},
		{Name: "70+ Male", AgeMin: intPtr(70), Gender: "Male"},
		{Name: "70+ Female", AgeMin: intPtr(70), Gender: "Female"},
		{Name: "Under 21 Male", AgeMin: intPtr(18), AgeMax: intPtr(20), Gender: "Male"},
		{Name: "Under 21 Female", AgeMin: intPtr(18), AgeMax: intPtr(20), Gender: "Female"},
		{Name: "Under 18 Male", AgeMin: intPtr(16), AgeMax: intPtr(17), Gender: "Male"},
		{Name: "Under 18 Female", AgeMin: intPtr(16), AgeMax: intPtr(17), Gender: "Female"},
		{Name: "Under 16 Male", AgeMin: intPtr(14), AgeMax: intPtr(15), Gender: "Male"},
		{Name: "Under 16 Female", AgeMin: intPtr(14), AgeMax: intPtr(15), Gender: "Female"},
		{Name: "Under 14 Male", AgeMax: intPtr(13), Gender: "Male"},
		{Name: "Under 14 Female", AgeMax: intPtr(13), Gender: "Female"},
	}
	for i := range classes {
		if err := db.Where("name = ?", classes[i].Name).FirstOrCreate(&classes[i]).Error; err != nil {
			return fmt.Errorf("seed class %q: %w", classes[i].Name, err)
		}
	}

	divisions := []Division{
		{Name: "Recurve", Description: "Traditional recurve bow"},
		{Name: "Compound", Description: "Compound bow with sights and stabilizers"},
		{Name: "Recurve Barebow", Description: "Recurve without sights"},
		{Name: "Compound Barebow", Description: "Compound without sights"},
		{Name: "Longbow", Description: "Traditional longbow"},
	}
	for i := range divisions {
		if err := db.Where("name = ?", divisions[i].Name).FirstOrCreate(&divisions[i]).Error; err != nil {
			return fmt.Errorf("seed division %q: %w", divisions[i].Name, err)
		}
	}

	// 类别为组别×弓种全矩阵
	for _, cls := range classes {
		for _, div := range divisions {
			cat := Category{
				ClassID:    cls.ClassID,
				DivisionID: div.DivisionID,
				Name:       fmt.Sprintf("%s - %s", cls.Name, div.Name),
			}
			if err := db.Where("class_id = ? AND division_id = ?", cls.ClassID, div.DivisionID).
				FirstOrCreate(&cat).Error; err != nil {
				return fmt.Errorf("seed category %q: %w", cat.Name, err)
			}
		}
	}

	return seedRounds(db)
}

// seedRounds 示例轮定义（世界射联常用轮）
func seedRounds(db *gorm.DB) error {
	rounds := []Round{
		{
			Name:        "WA 1440",
			Description: "World Archery 1440 Round (formerly FITA Round) - 144 arrows",
			Ranges: []RoundRange{
				{RangeNo: 1, Distance: 90, Ends: 6, TargetFace: "122cm", ScoringType: ScoringTenZone, ArrowsPerEnd: 6},
				{RangeNo: 2, Distance: 70, Ends: 6, TargetFace: "122cm", ScoringType: ScoringTenZone, ArrowsPerEnd: 6},
				{RangeNo: 3, Distance: 50, Ends: 6, TargetFace: "80cm", ScoringType: ScoringTenZone, ArrowsPerEnd: 6},
				{RangeNo: 4, Distance: 30, Ends: 6, TargetFace: "80cm", ScoringType: ScoringTenZone, ArrowsPerEnd: 6},
			},
		},
		{
			Name:        "WA 70m",
			Description: "World Archery 70m Round - 72 arrows, used in Olympic competition",
			Ranges: []RoundRange{
				{RangeNo: 1, Distance: 70, Ends: 12, TargetFace: "122cm", ScoringType: ScoringTenZone, ArrowsPerEnd: 6},
			},
		},
		{
			Name:        "WA 18m Indoor",
			Description: "World Archery 18m Indoor Round - 60 arrows",
			Ranges: []RoundRange{
				{RangeNo: 1, Distance: 18, Ends: 10, TargetFace: "40cm", ScoringType: ScoringTenZone, ArrowsPerEnd: 6},
			},
		},
	}
	for i := range rounds {
		var count int64
		if err := db.Model(&Round{}).Where("name = ?", rounds[i].Name).Count(&count).Error; err != nil {
			return fmt.Errorf("seed round %q: %w", rounds[i].Name, err)
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&rounds[i]).Error; err != nil {
			return fmt.Errorf("seed round %q: %w", rounds[i].Name, err)
		}
	}
	return nil
}
