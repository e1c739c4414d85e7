// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-match/pkg/types"
)

const threeProfessors = "为您推荐以下三位教授：\n\n" +
	"1. **王明** 浙江大学计算机科学与技术学院教授，主要研究计算机视觉与深度学习。曾主持国家自然科学基金重点项目多项。邮箱：wangming@zju.edu.cn，电话：0571-87951234\n" +
	"2. **李华** 就职于控制科学与工程学院，研究方向为智能控制和机器学习。主页：https://person.zju.edu.cn/lihua\n" +
	"3. **张伟** 浙江大学医学院研究员，专注于肿瘤免疫治疗研究，在国际期刊发表论文五十余篇。"

var submitted = time.UnixMilli(1700000000000)

func newTestExtractor() *Extractor {
	return New(DefaultVocabulary(), nil)
}

func TestExtractNumberedEntries(t *testing.T) {
	records := newTestExtractor().ExtractAt(threeProfessors, submitted)
	require.Len(t, records, 3)

	wang := records[0]
	assert.Equal(t, "王明", wang.Name)
	assert.Equal(t, "计算机科学与技术学院", wang.School)
	assert.Equal(t, "wangming@zju.edu.cn", wang.Email)
	assert.Equal(t, "0571-87951234", wang.Phone)
	assert.Empty(t, wang.Office)
	assert.Empty(t, wang.Homepages)
	assert.Equal(t, []string{"计算机视觉", "深度学习"}, wang.Areas)
	assert.Equal(t, []string{
		"浙江大学计算机科学与技术学院教授，主要研究计算机视觉与深度学习",
		"曾主持国家自然科学基金重点项目多项",
	}, wang.Highlights)
	assert.Equal(t, 83, wang.Score)
	assert.Equal(t, wang.Score, wang.DisplayScore)
	assert.Equal(t, "prof_1700000000000_0", wang.ProfID)
	assert.Equal(t, "doc_1700000000000_0", wang.DocumentID)

	li := records[1]
	assert.Equal(t, "李华", li.Name)
	assert.Equal(t, "控制科学与工程学院", li.School)
	assert.Equal(t, []string{"https://person.zju.edu.cn/lihua"}, li.Homepages)
	assert.Equal(t, []string{"机器学习", "智能控制"}, li.Areas)
	assert.Empty(t, li.Email)
	assert.Equal(t, 80, li.Score)
	assert.Equal(t, "prof_1700000000000_1", li.ProfID)

	zhang := records[2]
	assert.Equal(t, "张伟", zhang.Name)
	assert.Equal(t, "医学院", zhang.School)
	assert.Equal(t, []string{"肿瘤免疫", "肿瘤免疫治疗"}, zhang.Areas)
	assert.Equal(t, 70, zhang.Score)
	assert.Equal(t, "doc_1700000000000_2", zhang.DocumentID)
}

func TestExtractUsesClock(t *testing.T) {
	ex := newTestExtractor()
	ex.now = func() time.Time { return submitted }
	records := ex.Extract(threeProfessors)
	require.Len(t, records, 3)
	assert.Equal(t, "prof_1700000000000_2", records[2].ProfID)
}

func TestExtractGatedOut(t *testing.T) {
	texts := []string{
		"",
		"王明教授是计算机学院的老师，他在视觉方向很有名。",
		"目前没有找到合适的人选，请换个问题。",
	}
	ex := newTestExtractor()
	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			assert.Nil(t, ex.ExtractAt(text, submitted))
		})
	}
}

func TestExtractWholeTextFallback(t *testing.T) {
	text := "为您推荐**陈静**教授，材料科学与工程学院，从事高分子复合材料研究。邮箱：chenjing@zju.edu.cn"
	records := newTestExtractor().ExtractAt(text, submitted)
	require.Len(t, records, 1)
	assert.Equal(t, "陈静", records[0].Name)
	assert.Equal(t, "材料科学与工程学院", records[0].School)
	assert.Equal(t, "chenjing@zju.edu.cn", records[0].Email)
	assert.Equal(t, []string{"高分子复合材料"}, records[0].Areas)
	assert.Equal(t, 80, records[0].Score)
	assert.Equal(t, "prof_1700000000000_0", records[0].ProfID)
}

func TestExtractFallbackNeedsBoldAndDepartment(t *testing.T) {
	ex := newTestExtractor()
	assert.Nil(t, ex.ExtractAt("推荐几位做机器学习的教授。", submitted))
	assert.Nil(t, ex.ExtractAt("推荐**王明**教授，他非常优秀。", submitted))
}

func TestExtractGateBoldAndDepartment(t *testing.T) {
	ex := newTestExtractor()

	assert.Nil(t, ex.ExtractAt("**王明**是计算机学院的老师，他在视觉方向很有名。", submitted))

	records := ex.ExtractAt("推荐**王明**教授，计算机学院，研究计算机视觉。", submitted)
	require.Len(t, records, 1)
	assert.Equal(t, "王明", records[0].Name)
	assert.Equal(t, "计算机学院", records[0].School)
}

func TestExtractNoAreasIsEmptyList(t *testing.T) {
	records := newTestExtractor().ExtractAt("为您推荐以下教授：\n1. **王明** 计算机学院教授，主持多项国家级重点研发项目。", submitted)
	require.Len(t, records, 1)
	assert.NotNil(t, records[0].Areas)
	assert.Empty(t, records[0].Areas)

	data, err := json.Marshal(records[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"areas":[]`)
}

func TestExtractNameFallback(t *testing.T) {
	records := newTestExtractor().ExtractAt("1. ** ** 计算机学院教授", submitted)
	require.Len(t, records, 1)
	assert.Equal(t, "教授1", records[0].Name)
}

func TestExtractUnknownSchool(t *testing.T) {
	records := newTestExtractor().ExtractAt("推荐以下教授：\n1. **赵强** 研究方向为数据挖掘。", submitted)
	require.Len(t, records, 1)
	assert.Equal(t, UnknownSchool, records[0].School)
	assert.Equal(t, []string{"数据挖掘"}, records[0].Areas)
}

func TestExtractBounds(t *testing.T) {
	text := "为您推荐以下教授：\n1. **钱坤** 计算机学院，研究人工智能、机器学习、深度学习、自然语言处理、数据挖掘和云计算。" +
		"第一项成果是提出了新的视觉模型结构。第二项成果是构建了大规模开放数据集。" +
		"第三项成果是获得国家科技进步二等奖项。第四项成果是主持了重点研发计划项目。" +
		"第五项成果是培养了数十名优秀博士研究生。第六项成果是发表顶级会议论文数十篇。"
	records := newTestExtractor().ExtractAt(text, submitted)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, []string{"人工智能", "机器学习", "深度学习", "自然语言处理"}, rec.Areas)
	assert.Len(t, rec.Highlights, maxHighlights)
	assert.LessOrEqual(t, rec.Score, 100)
	assert.GreaterOrEqual(t, rec.Score, 0)
}

func TestExplain(t *testing.T) {
	ex := newTestExtractor()

	expl := ex.Explain(threeProfessors)
	assert.Equal(t, "recommend-professor", expl.Gate)
	require.Len(t, expl.Segments, 3)
	assert.Contains(t, expl.Segments[0].Fields, FieldTrace{Field: "email", Strategy: "labeled-mailbox", Value: "wangming@zju.edu.cn"})
	assert.Contains(t, expl.Segments[0].Fields, FieldTrace{Field: "school", Strategy: "institution-department", Value: "计算机科学与技术学院"})
	assert.Contains(t, expl.Segments[1].Fields, FieldTrace{Field: "school", Strategy: "affiliated-with", Value: "控制科学与工程学院"})
	assert.Contains(t, expl.Segments[1].Fields, FieldTrace{Field: "homepages", Strategy: "labeled-url", Value: "https://person.zju.edu.cn/lihua"})

	none := ex.Explain("王明教授是计算机学院的老师。")
	assert.Empty(t, none.Gate)
	assert.Empty(t, none.Segments)
}

func TestSegment(t *testing.T) {
	segs := segment("前言\n1. **甲** 一\n2. **乙** 二\n10. **丙** 三")
	assert.Equal(t, []string{"1. **甲** 一\n", "2. **乙** 二\n", "10. **丙** 三"}, segs)
	assert.Nil(t, segment("没有条目"))
}

func TestEmailStrategies(t *testing.T) {
	tests := []struct {
		seg, want, by string
	}{
		{"邮箱：wang@zju.edu.cn", "wang@zju.edu.cn", "labeled-mailbox"},
		{"Email: Wang.Ming@ZJU.edu.cn", "Wang.Ming@ZJU.edu.cn", "labeled-email"},
		{"联系 a_b@x.org 即可", "a_b@x.org", "bare-address"},
		{"无联系方式", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.seg, func(t *testing.T) {
			got, by := firstOf(emailStrategies, tt.seg)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.by, by)
		})
	}
}

func TestOfficeStrategies(t *testing.T) {
	tests := []struct {
		seg, want, by string
	}{
		{"办公地点：玉泉校区行政楼301，电话", "玉泉校区行政楼301", "office-label"},
		{"地点：紫金港", "紫金港", "location-label"},
		{"地址：A1", "", ""},
		{"无", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.seg, func(t *testing.T) {
			got, by := firstOf(officeStrategies, tt.seg)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.by, by)
		})
	}
}

func TestPhoneStrategies(t *testing.T) {
	tests := []struct {
		seg, want, by string
	}{
		{"手机：138 0013 8000", "138 0013 8000", "labeled-phone"},
		{"Tel: +86-571-8795", "+86-571-8795", "labeled-phone"},
		{"联系我：13800138000", "13800138000", "bare-mobile"},
		{"座机 0571-88206000", "0571-88206000", "bare-landline"},
		{"电话：123", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.seg, func(t *testing.T) {
			got, by := firstOf(phoneStrategies, tt.seg)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.by, by)
		})
	}
}

func TestHomepagesOf(t *testing.T) {
	got, by := homepagesOf("主页：https://a.zju.edu.cn/x 另见 https://b.org/y, https://a.zju.edu.cn/x")
	assert.Equal(t, []string{"https://a.zju.edu.cn/x", "https://b.org/y"}, got)
	assert.Equal(t, "labeled-url", by)

	got, by = homepagesOf("见 https://c.org/z. 更多")
	assert.Equal(t, []string{"https://c.org/z"}, got)
	assert.Equal(t, "bare-url", by)

	got, by = homepagesOf("没有链接")
	assert.Empty(t, got)
	assert.Empty(t, by)
}

func TestAreasCaseInsensitive(t *testing.T) {
	ex := newTestExtractor()
	assert.Equal(t, []string{"NLP", "LLM"}, ex.areasOf("works on llm and nlp"))
	assert.Empty(t, ex.areasOf("历史文献研究"))
}

func TestHighlightsFallback(t *testing.T) {
	got, n := highlightsOf("1. **王明** 邮箱：a@b.cn")
	assert.Equal(t, FallbackHighlights, got)
	assert.Zero(t, n)
}

func TestSchoolCleanup(t *testing.T) {
	c := newSchoolCleanup(DefaultVocabulary())
	tests := []struct {
		in, want string
	}{
		{"**王明**：计算机学院", "计算机学院"},
		{"简介：浙大软件学院", "软件学院"},
		{"就职于海洋", "海洋学院"},
		{"的药", "药学院"},
		{"医学院。", "医学院"},
		{"- 光电科学与工程学院", "光电科学与工程学院"},
		{"• 药学院", "药学院"},
		{"", UnknownSchool},
		{"**", UnknownSchool},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, c.apply(tt.in))
		})
	}
}

func TestSchoolKnownDepartment(t *testing.T) {
	school, by := newTestExtractor().schoolOf("**孙丽**药学院")
	assert.Equal(t, "药学院", school)
	assert.Equal(t, "known-department", by)
}

func TestSchoolStripsListMarker(t *testing.T) {
	school, by := newTestExtractor().schoolOf("**王明** - 光电科学与工程学院")
	assert.Equal(t, "光电科学与工程学院", school)
	assert.Equal(t, "generic-department", by)
}

func TestScore(t *testing.T) {
	assert.Equal(t, 60, score(types.ProfessorRecord{}, 0))
	full := types.ProfessorRecord{
		Email:     "a@b.cn",
		Homepages: []string{"https://a.cn"},
		Areas:     []string{"NLP"},
		Office:    "玉泉校区",
		Phone:     "13800138000",
	}
	assert.Equal(t, 100, score(full, 3))
	assert.Equal(t, 95, score(full, 2))
}

func TestLoadVocabulary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("institution: 清华大学\nresearch_areas:\n  - 量子计算\n"), 0o644))

	v, err := LoadVocabulary(path)
	require.NoError(t, err)
	assert.Equal(t, "清华大学", v.Institution)
	assert.Equal(t, []string{"量子计算"}, v.ResearchAreas)
	assert.Equal(t, DefaultVocabulary().Departments, v.Departments)

	records := New(v, nil).ExtractAt("为您推荐以下教授：\n1. **周杰** 清华大学物理系教授，研究量子计算。", submitted)
	require.Len(t, records, 1)
	assert.Equal(t, "物理系", records[0].School)
	assert.Equal(t, []string{"量子计算"}, records[0].Areas)
}

func TestLoadVocabularyErrors(t *testing.T) {
	v, err := LoadVocabulary("")
	require.NoError(t, err)
	assert.Equal(t, DefaultVocabulary(), v)

	_, err = LoadVocabulary(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("institution: [unclosed"), 0o644))
	_, err = LoadVocabulary(bad)
	assert.Error(t, err)
}
