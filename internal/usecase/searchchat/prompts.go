package searchchat

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/chatdesk/internal/domain/search"
)

const needSearchPrompt = `
    You are a helpful assistant.

    When a user provides a QUERY, determine if the QUERY indicates a need for an internet search.

    Please analyze the QUERY and respond with:
    - "TRUE" if the QUERY suggests that an internet search is needed.
    - "FALSE" if the QUERY does not suggest a need for an internet search.

    Make sure to consider keywords and phrases that typically indicate a request for information retrieval, such as "find," "search," "look up," "what is," "how to," or specific questions that require external information.

    **Output Format:** Please respond with only "TRUE" or "FALSE" without any additional text or explanation.
`

const sortingPrompt = `
    You are a helpful assistant.

    When a user provides a QUERY, determine if the QUERY indicates a need for sorting the search results by the latest or by similarity.

    Please analyze the QUERY and respond with:
    - "LATEST" if the QUERY suggests that the search results should be sorted by the latest.
    - "SIMILARITY" if the QUERY suggests that the search results should be sorted by similarity.

    Make sure to consider keywords and phrases that typically indicate a request for sorting, such as "latest," "new," "recent," "similar," or "related."

    **Output Format:** Please respond with only "LATEST" or "SIMILARITY" without any additional text or explanation.
`

const videoPrompt = `
    You are a helpful assistant.

    When a user provides a QUERY, determine if the QUERY indicates a need for video search (e.g., YouTube).

    Please analyze the QUERY and respond with:
    - TRUE if the QUERY suggests that a video search is needed.
    - FALSE if the QUERY does not suggest a need for video search.

    Make sure to consider keywords and phrases that typically indicate a request for video content, such as "watch," "video," "clip," "film," or specific video-related questions.

    **Output Format:** Please respond with only TRUE or FALSE without any additional text or explanation.
`

const rewritePrompt = `
    Please create a search query for a search engine (e.g., Google, Naver) based on the following QUERY and SERVICE_TYPE.

    Make sure to:
    1. Use clear and concise language.
    2. Include relevant keywords that capture the essence of the QUERY.
    3. Format the query in a way that is likely to yield useful search results.
    Please don't return special characters like double quotes, and avoid including today's year, month, etc.
    **Output Format:** Provide the search query as a single string without any additional text or explanation.
`

// PromptRole frames the final grounded answer.
const PromptRole = `
        You are a helpful assistant.
        When a user asks a question, use the provided search results (REAL_SEARCH) to formulate your response.
        If REAL_SEARCH is not available, provide a general answer based on your knowledge.
        You should generally respond in a formal manner. However, if the user requests to change your chat style, you should switch to what they need.

        Ensure that your answer is relevant to the user's inquiry and incorporates information from the search results when available.
        For example, if the user asks about a specific topic, summarize the key points from the REAL_SEARCH and provide a clear and concise answer.
        If there are no search results, respond with a helpful and informative answer based on what you know.
        Always aim to assist the user by delivering accurate and helpful information based on the search results or your general knowledge.
`

var serviceTypePrompt = func() string {
	var b strings.Builder
	b.WriteString("\n        Please extract the type of search service based on the following QUERY. The available options are:\n")
	for _, t := range search.ServiceTypes() {
		fmt.Fprintf(&b, "        - '%s': %s\n", t, t.Description())
	}
	b.WriteString("        Make sure to choose the most relevant type that best fits the content of the QUERY provided.\n")
	b.WriteString("        **Output Format:** Please respond with only the type (e.g., BOOK) without any additional text or formatting.\n")
	return b.String()
}()

func classifierMessage(prompt, query string) string {
	return fmt.Sprintf("\n%s\nQUERY: %s\n", prompt, query)
}

func rewriteMessage(query string, t search.ServiceType) string {
	return fmt.Sprintf("\n%s\nSERVICE_TYPE: %s\nQUERY: %s\n", rewritePrompt, t.Description(), query)
}

func finalMessage(bundle *search.Bundle, question string) string {
	return fmt.Sprintf("\n%s\nREAL_SEARCH:\n    %s\nUSER: %s\n", PromptRole, bundle.Render(), question)
}
