package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"coffee-doctor-core/svc/models"
)

const DOCTOR_PERSONA = `You are "The Coffee Doctor", a calm and encouraging
barista who diagnoses home-brewing problems. You ask one clear question at a
time, never add greetings mid-conversation, and you keep the technical
content of a question or solution intact when you rephrase it.`

type LLMModel string

// Define the constants
const (
	GPT_LATEST LLMModel = openai.GPT4oMini
)

// AIHelper wraps the OpenAI client behind the three narrow collaborator
// roles the diagnostic core needs: problem classification, answer
// interpretation, and question/solution phrasing.
type AIHelper struct {
	client *openai.Client
}

// Constructor for AIHelper
func NewAIHelper(apiKey string) *AIHelper {
	client := openai.NewClient(apiKey)
	return &AIHelper{
		client: client,
	}
}

// ClassifyProblem maps a free-text complaint onto one of the known problem
// labels. The model is constrained to the label vocabulary; anything else
// comes back verbatim and the knowledge base will simply yield no causes.
func (aih *AIHelper) ClassifyProblem(text string, labels []string) (string, error) {
	systemContext := fmt.Sprintf(
		"Classify the user's coffee complaint into exactly one of these labels: %s. Respond with ONLY the label, nothing else.",
		strings.Join(labels, ", "))

	response, err := aih.client.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
		Model: string(GPT_LATEST),
		Messages: []openai.ChatCompletionMessage{
			{Role: "system", Content: systemContext},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to classify problem: %w", err)
	}

	label := strings.ToLower(strings.TrimSpace(response.Choices[0].Message.Content))
	log.Printf("[AIHelper] Classified %q as %q", text, label)
	return label, nil
}

// InterpretAnswer classifies the user's raw answer to a diagnostic question
// as affirmative, negative or unsure.
func (aih *AIHelper) InterpretAnswer(question, rawAnswer string) (models.Interpretation, error) {
	prompt := fmt.Sprintf(`Analyze the user's response in the context of the question that was asked.
Question: %q
User's response: %q
Is the user confirming the premise of the question? Respond with ONLY one word: affirmative, negative, or unsure.`,
		question, rawAnswer)

	response, err := aih.client.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
		Model: string(GPT_LATEST),
		Messages: []openai.ChatCompletionMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to interpret answer: %w", err)
	}

	interpretation := ParseInterpretation(response.Choices[0].Message.Content)
	log.Printf("[AIHelper] Interpretation: %q -> %q", rawAnswer, interpretation)
	return interpretation, nil
}

// ParseInterpretation maps model output onto the fixed interpretation
// vocabulary, defaulting to unsure for anything unrecognized.
func ParseInterpretation(s string) models.Interpretation {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "affirmative"):
		return models.InterpretationAffirmative
	case strings.Contains(s, "negative"):
		return models.InterpretationNegative
	default:
		return models.InterpretationUnsure
	}
}

// PhraseQuestion rewords a static knowledge-base question in the doctor's
// voice without changing what it asks.
func (aih *AIHelper) PhraseQuestion(questionText string) (string, error) {
	response, err := aih.client.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
		Model: string(GPT_LATEST),
		Messages: []openai.ChatCompletionMessage{
			{Role: "system", Content: DOCTOR_PERSONA + " Ask the user the following diagnostic question clearly and concisely. Do not add extra greetings."},
			{Role: "user", Content: fmt.Sprintf("The question to ask is: %q", questionText)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to phrase question: %w", err)
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

// PhraseSolution explains a confirmed solution, tailored with the session's
// bean, method and recipe context.
func (aih *AIHelper) PhraseSolution(solutionText string, sc models.SessionContext) (string, error) {
	recipeContext := fmt.Sprintf("Context: the user is brewing %q with a %q.", sc.BeanName, sc.MethodName)
	if sc.Recipe != nil {
		var targets []string
		for dim, t := range sc.Recipe.Targets {
			targets = append(targets, fmt.Sprintf("%s: %s", dim, t.Display))
		}
		recipeContext += fmt.Sprintf(" The ideal recipe targets are: %s.", strings.Join(targets, ", "))
	}

	systemContext := DOCTOR_PERSONA + ` The diagnosis is confirmed. Start with "Great, I think we've found the issue!".
Then explain the following solution in a helpful and encouraging way.
Use the provided context to make your explanation specific to the user's situation.`

	response, err := aih.client.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
		Model: string(GPT_LATEST),
		Messages: []openai.ChatCompletionMessage{
			{Role: "system", Content: systemContext},
			{Role: "user", Content: fmt.Sprintf("%s\n\nThe solution to explain is: %q", recipeContext, solutionText)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to phrase solution: %w", err)
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
