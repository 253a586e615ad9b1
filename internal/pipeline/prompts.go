package pipeline

import (
	"fmt"
	"strings"

	"webinar-studio/internal/models"
)

// enhancePrompt 构建描述润色的提示词
func enhancePrompt(description, topic, audience string) string {
	return fmt.Sprintf(`Improve the following webinar description. Add a compelling hook and clear structure while preserving the original intent. Keep it concise.

Topic: %s
Target audience: %s

Description:
%s`, topic, audience, description)
}

// outlinePrompt 构建大纲生成的提示词
func outlinePrompt(topic, audience string, duration int, description string) string {
	return fmt.Sprintf(`Create a webinar outline for the topic below. Produce 3 to 5 main sections. The introduction, section and conclusion durations must sum exactly to %d minutes, and totalDuration must be %d. Include 2-3 interactive elements (poll, quiz or qa) spread across the timeline.

Topic: %s
Target audience: %s
Total duration: %d minutes

Description:
%s`, duration, duration, topic, audience, duration, description)
}

// slidesPrompt 构建幻灯片生成的提示词，将完整大纲序列化进上下文
func slidesPrompt(outline *models.Outline, templateStyle string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create the slide deck for the webinar outline below, in a %q visual style.\n", templateStyle)
	b.WriteString(`Requirements:
- exactly one opening title slide
- one or more introduction slides
- 1-2 content slides per section, with a transition slide between sections
- conclusion slides and a final call-to-action slide
- every slide has speakerNotes and a duration estimate in minutes
- at most 5 bullets per slide; imagePrompt is optional, omit it when no visual is needed

`)

	fmt.Fprintf(&b, "Title: %s\n", outline.Title)
	fmt.Fprintf(&b, "Hook: %s\n", outline.Introduction.Hook)
	fmt.Fprintf(&b, "Overview: %s (%d min)\n", strings.Join(outline.Introduction.Overview, "; "), outline.Introduction.Duration)
	for i, s := range outline.Sections {
		fmt.Fprintf(&b, "Section %d: %s (%d min)\n", i+1, s.Title, s.Duration)
		fmt.Fprintf(&b, "  Key points: %s\n", strings.Join(s.KeyPoints, "; "))
		fmt.Fprintf(&b, "  Transition: %s\n", s.Transition)
	}
	fmt.Fprintf(&b, "Conclusion: %s (%d min)\n", strings.Join(outline.Conclusion.Summary, "; "), outline.Conclusion.Duration)
	fmt.Fprintf(&b, "Call to action: %s\n", outline.Conclusion.CallToAction)

	return b.String()
}

// scriptPrompt 构建旁白脚本生成的提示词，拼接每页幻灯片的标题、讲稿和时长
func scriptPrompt(slides []models.Slide) string {
	var b strings.Builder
	b.WriteString(`Write a natural spoken narration script for the slide deck below. Read like a real presenter, not a list. Insert a marker [SLIDE k] at the point where slide k begins, in slide order.

`)
	for i, s := range slides {
		fmt.Fprintf(&b, "Slide %d: %s (%d min)\n", i+1, s.Title, s.Duration)
		if s.SpeakerNotes != "" {
			fmt.Fprintf(&b, "Notes: %s\n", s.SpeakerNotes)
		}
	}
	return b.String()
}
