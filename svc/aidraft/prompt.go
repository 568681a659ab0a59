package aidraft

import (
	"cmp"
	"fmt"
	"strings"
)

const summarySystemPrompt = `You are a job resume generator AI. Your task is to write a professional introduction summary for a resume given the user's provided data.
Only return the summary, nothing else. Do not include any other text, comments or any other information in your response.
Keep it concise and professional.`

const workExperienceSystemPrompt = `You are a job resume generator AI. Your task is to write a single work experience entry based on the user input.

Your response must adhere to the following structure. You can omit fields if they can't be inferred from provided data.

Job title: <job title>
Company: <company name>
Start date: <format: YYYY-MM-DD> (only if provided)
End date: <format: YYYY-MM-DD> (only if provided)
Description: <an optimized description in bullet format, might be inferred from the job title>`

const na = "N/A"

func summaryUserPrompt(in SummaryInput) string {
	var b strings.Builder
	b.WriteString("Please generate a professional resume summary from this data:\n\n")
	fmt.Fprintf(&b, "Job title: %s\n\n", cmp.Or(in.JobTitle, na))

	b.WriteString("Work experience:\n")
	for _, exp := range in.WorkExperience {
		fmt.Fprintf(&b, "- %s at %s from %s to %s\n  %s\n",
			cmp.Or(exp.Position, na),
			cmp.Or(exp.Company, na),
			cmp.Or(exp.StartDate, na),
			cmp.Or(exp.EndDate, "present"),
			cmp.Or(exp.Description, na),
		)
	}

	b.WriteString("\nEducation:\n")
	for _, edu := range in.Education {
		fmt.Fprintf(&b, "- %s at %s from %s to %s\n",
			cmp.Or(edu.Degree, na),
			cmp.Or(edu.School, na),
			cmp.Or(edu.StartDate, na),
			cmp.Or(edu.EndDate, na),
		)
	}

	fmt.Fprintf(&b, "\nSkills: %s\n", cmp.Or(strings.Join(in.Skills, ", "), na))
	return b.String()
}

func workExperienceUserPrompt(in WorkExperienceInput) string {
	return "Please provide a work experience entry from this description:\n" + in.Description
}
