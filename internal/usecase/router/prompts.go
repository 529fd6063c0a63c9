package router

import "github.com/kailas-cloud/chatdesk/internal/domain/conversation"

// SystemPrompt opens every conversation and survives resets.
const SystemPrompt = `
    You are a helpful assistant.
    You can discuss with the user, or perform some actions like sending an email.
    If user ask you to send an email, you have to ask for the subject, recipient, and message.
    You will receive either intructions starting with [INSTRUCTION] and respond questions.
    Follow the [INSTRUCTION] and respond questions.
    but, if the user wants to exit the conversation, write "EXIT" only one word.
`

var instructions = [...]string{
	conversation.Start: `
        [INSTRUCTION]
            Write "WRITE_EMAIL" if the user wants to write an email,
            "QUESTION" if the user has a precise question,
            "OTHER"  in any other case. Only write one word,
            Only answer one word.
    `,
	conversation.Question: `
        [INSTRUCTION]
            If you can answer the question: ANSWER,
            if you need more information: MORE,
            if you cannot answer: OTHER. Only answer one word.
    `,
	conversation.Answer: `
        [INSTRUCTION]
            Answer the user question
    `,
	conversation.More: `
        [INSTRUCTION]
            Ask the user for more information as specified by previous intructions
    `,
	conversation.Other: `
        [INSTRUCTION]
            Give a polite answer or greetings if the user is making polite conversation.
            Else, answer to the user that you cannot answer the question or do the action.
    `,
	conversation.WriteEmail: `
        [INSTRUCTION]
           If the subject or recipient or body is missing, answer "MORE".
           Else if you have all the information answer
           "ACTION_WRITE_EMAIL | subject:subject, recipient:recipient, message:message".
    `,
	conversation.ActionWriteEmail: `
        [INSTRUCTION]
            The mail has been sent.
            Answer to the user to tell the action is done
    `,
	conversation.Exit: `
        [INSTRUCTION]
            Not answer "EXIT" only one word.
            Answer the user to tell the conversation is ended very politely.
    `,
}

// Every state needs an instruction.
var _ = [1]struct{}{}[len(instructions)-conversation.NumStates]

// Instruction returns the probe text sent while in state s.
func Instruction(s conversation.State) string {
	if !s.IsValid() {
		return ""
	}
	return instructions[s]
}
