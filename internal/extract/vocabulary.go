// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Vocabulary holds the fixed word lists the extractor matches against.
type Vocabulary struct {
	// Institution is the university name stripped from department phrases
	// (e.g. "浙江大学").
	Institution string `json:"institution" yaml:"institution"`

	// InstitutionAliases are short forms also stripped (e.g. "浙大").
	InstitutionAliases []string `json:"institution_aliases" yaml:"institution_aliases"`

	// Departments are known department names, tried last when no phrase
	// pattern yields a school.
	Departments []string `json:"departments" yaml:"departments"`

	// ResearchAreas are the topic keywords used as area tags, in priority
	// order.
	ResearchAreas []string `json:"research_areas" yaml:"research_areas"`
}

// DefaultVocabulary returns the built-in vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Institution:        "浙江大学",
		InstitutionAliases: []string{"浙大"},
		Departments: []string{
			"软件学院", "计算机学院", "信息学院", "工程师学院", "医学院", "管理学院",
			"计算机科学与技术学院", "控制科学与工程学院", "生物医学工程与仪器科学学院",
			"光电科学与工程学院", "材料科学与工程学院", "化学工程与生物工程学院",
			"海洋学院", "建筑工程学院", "机械工程学院", "能源工程学院", "航空航天学院",
			"电气工程学院", "生命科学学院", "药学院", "基础医学院", "公共卫生学院",
			"口腔医学院", "护理学院", "心理与行为科学系", "教育学院", "人文学院",
			"外国语言文化与国际交流学院", "传媒与国际文化学院", "经济学院",
			"公共管理学院", "法学院", "马克思主义学院", "数学科学学院", "物理学院",
			"化学系", "地球科学学院", "体育科学与技术学院",
		},
		ResearchAreas: []string{
			"计算机视觉", "机器视觉",
			"人工智能", "机器学习", "深度学习",
			"自然语言处理", "NLP", "语言模型",
			"大模型", "LLM",
			"多模态",
			"数据挖掘",
			"智能控制", "自动化",
			"软件工程", "系统设计",
			"网络安全", "信息安全",
			"数据库", "云计算",
			"物联网", "IoT",
			"区块链",
			"高分子流变学", "多组分聚合物材料结构与性能",
			"高分子复合材料", "文物数字化",
			"碳氢键精准催化转化", "不对称合成",
			"天然产物及药物合成",
			"大数据解析", "工业大数据",
			"工业人工智能", "智能制造", "智慧能源",
			"智慧医疗", "光通信 / 光互联", "光计算的硅基光子集成前沿及应用研究",
			"Multimode silicon photonics",
			"Silicon - plus photonics", "Reconfigurable silicon photonics",
			"Silicon photonics for polarization - handling and wavelength - filtering",
			"计算机图形学", "人机交互", "虚拟现实",
			"信息与电子工程", "天然产物全合成及导向天然产物的新反应方法学",
			"多媒体分析与检索", "跨媒体计算",
			"T 细胞生物学", "细胞信号传导", "细胞免疫学",
			"免疫调节", "自身免疫病", "肿瘤免疫", "网络优化与控制",
			"网络系统安全", "工业大数据与物联网",
			"检测技术与自动化装置", "电磁波理论及应用", "新型人工电磁介质",
			"电磁波隐身", "深度学习与智能电磁调控", "光学检测", "激光雷达",
			"生物制药技术", "生物催化和转化", "蛋白质工程", "界面电化学",
			"电化学发光和谱学电化学联用",
			"高灵敏和快速免疫检测方法、技术、便携式装置以及生医工交叉",
			"脑神经电化学", "化学脑机接口",
			"基于可穿戴传感器的健康连续监测和运动饮食辅助治疗", "锂电池",
			"电化学催化转化", "其他新型电池", "医学人工智能", "模式识别",
			"超分辨光学成像", "超分辨光刻",
			"计算机体系结构及微结构", "集成电路设计", "硬件安全",
			"电机与驱动控制", "新能源技术", "视觉媒体智能编码",
			"视频与点云智能应用", "视觉感知与体验质量评价",
			"教育领导与政策研究", "高等教育政策与治理", "学术职业",
			"系统医学与合成生物学", "生物医学信息学", "肿瘤免疫治疗",
			"合成生物信息学", "具有病理生理意义的标志物的发现",
			"合成生物系统的多组学时间序列建模", "基于自然语言的知识表示和知识推理",
			"生物大分子 RNA 化学修饰及其生物学意义",
			"RNA 化学标记及 RNA 碱基化学修饰测序方法开发",
			"荧光生物探针和生物成像",
		},
	}
}

// LoadVocabulary reads a YAML vocabulary file and overlays its non-empty
// fields on the built-in defaults. An empty path returns the defaults.
func LoadVocabulary(path string) (Vocabulary, error) {
	v := DefaultVocabulary()
	if path == "" {
		return v, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("reading vocabulary %s: %w", path, err)
	}

	var override Vocabulary
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Vocabulary{}, fmt.Errorf("parsing vocabulary %s: %w", path, err)
	}

	if override.Institution != "" {
		v.Institution = override.Institution
	}
	if len(override.InstitutionAliases) > 0 {
		v.InstitutionAliases = override.InstitutionAliases
	}
	if len(override.Departments) > 0 {
		v.Departments = override.Departments
	}
	if len(override.ResearchAreas) > 0 {
		v.ResearchAreas = override.ResearchAreas
	}
	return v, nil
}
