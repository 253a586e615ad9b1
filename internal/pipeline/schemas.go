package pipeline

import "encoding/json"

// outlineSchema 大纲的JSON Schema，所有字段必填。
// 结构必须与models.Outline保持一致
var outlineSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"introduction": {
			"type": "object",
			"properties": {
				"hook": {"type": "string"},
				"overview": {"type": "array", "items": {"type": "string"}},
				"duration": {"type": "integer"}
			},
			"required": ["hook", "overview", "duration"],
			"additionalProperties": false
		},
		"sections": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"title": {"type": "string"},
					"keyPoints": {"type": "array", "items": {"type": "string"}},
					"duration": {"type": "integer"},
					"transition": {"type": "string"}
				},
				"required": ["title", "keyPoints", "duration", "transition"],
				"additionalProperties": false
			}
		},
		"conclusion": {
			"type": "object",
			"properties": {
				"summary": {"type": "array", "items": {"type": "string"}},
				"callToAction": {"type": "string"},
				"duration": {"type": "integer"}
			},
			"required": ["summary", "callToAction", "duration"],
			"additionalProperties": false
		},
		"interactiveElements": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"type": {"type": "string", "enum": ["poll", "quiz", "qa"]},
					"timing": {"type": "integer"},
					"content": {"type": "string"}
				},
				"required": ["type", "timing", "content"],
				"additionalProperties": false
			}
		},
		"totalDuration": {"type": "integer"}
	},
	"required": ["title", "introduction", "sections", "conclusion", "interactiveElements", "totalDuration"],
	"additionalProperties": false
}`)

// slidesSchema 幻灯片数组的JSON Schema。
// imagePrompt可以为空字符串，表示该页不需要配图
var slidesSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"slides": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"id": {"type": "string"},
					"type": {"type": "string", "enum": ["title", "content", "transition", "call-to-action"]},
					"title": {"type": "string"},
					"bullets": {"type": "array", "items": {"type": "string"}},
					"speakerNotes": {"type": "string"},
					"imagePrompt": {"type": "string"},
					"duration": {"type": "integer"}
				},
				"required": ["id", "type", "title", "bullets", "speakerNotes", "imagePrompt", "duration"],
				"additionalProperties": false
			}
		}
	},
	"required": ["slides"],
	"additionalProperties": false
}`)
