// Package qualify implements the lead-qualification conversation flow:
// greeting composition, system-prompt construction, and the orchestration
// of one chat turn against the completion provider.
package qualify

import (
	"fmt"
	"strings"

	"github.com/leadline-ai/leadline/profile"
)

// systemPromptTemplate instructs the model on persona, goal, classification
// rules, and the strict JSON output contract. The literal example anchors the
// shape of the object the model must return.
const systemPromptTemplate = `You are %s, an expert sales assistant for the %s industry. Your goal is to qualify a lead by being conversational and asking relevant questions.
Qualification Rules:
- Hot: %s
- Cold: %s
- Invalid: %s

Based on the entire conversation, generate your next conversational response. After the response, you MUST classify the lead and extract key metadata.
Your final output must be a single, valid JSON object with three keys: "reply", "classification", and "metadata".
Example: {"reply": "Great! What is your budget?", "classification": "Cold", "metadata": {"Location": "Pune"}}`

// BuildSystemPrompt renders the per-industry system instruction. Pure
// function of the profile; same profile, same prompt.
func BuildSystemPrompt(p *profile.BusinessProfile) string {
	return fmt.Sprintf(systemPromptTemplate,
		p.AgentName,
		p.IndustryName,
		p.QualificationRules.Hot,
		p.QualificationRules.Cold,
		p.QualificationRules.Invalid,
	)
}

// Greeting composes the opening assistant message: the greeting template
// with the first {lead_name} occurrence replaced by leadName, followed by
// the industry's first qualifying question.
func Greeting(p *profile.BusinessProfile, leadName string) string {
	greeting := strings.Replace(p.InitialGreeting, profile.LeadNamePlaceholder, leadName, 1)
	return greeting + " " + p.QualifyingQuestions[0]
}
