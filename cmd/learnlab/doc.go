// Command learnlab generates podcasts, flashcard sets, and quizzes from
// questions about previously indexed documents.
package main
