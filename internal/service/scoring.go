package service

import (
	"fmt"

	"ArcheryClub/internal/model"
)

// EndInput 客户端提交的一局箭分
type EndInput struct {
	EndNumber int   `json:"end_number"`
	Arrows    []int `json:"arrows"`
}

// ValidateEnds 按轮定义校验成绩结构：局数、每局箭数、单箭分值
// 返回全部问题（英文，逐条返回给客户端），nil 表示通过
// 每局箭数按局所属距离段的 arrows_per_end 校验
func ValidateEnds(round *model.Round, ends []EndInput) []string {
	var problems []string

	expected := round.TotalEnds()
	if len(ends) != expected {
		problems = append(problems, fmt.Sprintf("Expected %d ends but got %d", expected, len(ends)))
	}

	// 局序号游标映射到所属距离段，局数不足时只校验已提交的前缀
	idx := 0
	for _, rg := range round.Ranges {
		for e := 0; e < rg.Ends; e++ {
			if idx >= len(ends) {
				return problems
			}
			end := ends[idx]
			endNo := idx + 1
			idx++
			if len(end.Arrows) != rg.ArrowsPerEnd {
				problems = append(problems, fmt.Sprintf("End %d must have exactly %d arrows", endNo, rg.ArrowsPerEnd))
				continue
			}
			for a, score := range end.Arrows {
				if score < 0 || score > 10 {
					problems = append(problems, fmt.Sprintf("End %d, Arrow %d: Invalid score %d", endNo, a+1, score))
				}
			}
		}
	}
	return problems
}

// BuildEnds 由箭分构造局/箭实体并汇总总分与命中数
// 命中 = 非脱靶（分值 > 0）
func BuildEnds(ends []EndInput) (built []model.End, totalScore, totalHits int) {
	built = make([]model.End, 0, len(ends))
	for i, in := range ends {
		end := model.End{
			EndNumber: i + 1,
			Arrows:    make([]model.Arrow, 0, len(in.Arrows)),
		}
		for j, score := range in.Arrows {
			end.Arrows = append(end.Arrows, model.Arrow{
				Score:      score,
				ArrowOrder: j + 1,
			})
			end.TotalScore += score
			if score > 0 {
				totalHits++
			}
		}
		totalScore += end.TotalScore
		built = append(built, end)
	}
	return built, totalScore, totalHits
}
