package dto_test

import (
	"encoding/json"
	"errors"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/issuedesk/internal/http/dto"
	"basegraph.app/issuedesk/internal/model"
)

func interactionBody(payload map[string]any) []byte {
	raw, err := json.Marshal(payload)
	Expect(err).NotTo(HaveOccurred())
	return []byte(url.Values{"payload": {string(raw)}}.Encode())
}

func submission(values map[string]any) map[string]any {
	return map[string]any{
		"type": "view_submission",
		"user": map[string]any{"id": "U123"},
		"view": map[string]any{
			"callback_id":      "create_issue_modal",
			"private_metadata": `{"repo":"acme/appsec"}`,
			"state":            map[string]any{"values": values},
		},
	}
}

func textValue(block, action, value string) map[string]any {
	return map[string]any{block: map[string]any{action: map[string]any{"type": "plain_text_input", "value": value}}}
}

func merge(maps ...map[string]any) map[string]any {
	out := map[string]any{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

var _ = Describe("DecodeSlashCommand", func() {
	It("decodes the command form", func() {
		body := url.Values{
			"trigger_id":   {"13345224609.738474920.8088930838d88f008e0"},
			"response_url": {"https://hooks.slack.com/commands/1234/5678"},
			"text":         {"  how do I rotate keys?  "},
			"command":      {"/issue"},
			"user_id":      {"U2147483697"},
			"channel_id":   {"C2147483705"},
		}.Encode()

		cmd, err := dto.DecodeSlashCommand([]byte(body))
		Expect(err).NotTo(HaveOccurred())
		Expect(cmd).To(Equal(model.SlashCommand{
			TriggerID:   "13345224609.738474920.8088930838d88f008e0",
			ResponseURL: "https://hooks.slack.com/commands/1234/5678",
			Text:        "how do I rotate keys?",
			Command:     "/issue",
			UserID:      "U2147483697",
			ChannelID:   "C2147483705",
		}))
	})

	It("allows an empty text and response_url", func() {
		cmd, err := dto.DecodeSlashCommand([]byte("trigger_id=abc"))
		Expect(err).NotTo(HaveOccurred())
		Expect(cmd.Text).To(BeEmpty())
		Expect(cmd.ResponseURL).To(BeEmpty())
	})

	It("keeps text and response_url when trigger_id is missing", func() {
		cmd, err := dto.DecodeSlashCommand([]byte("text=hello&response_url=https%3A%2F%2Fhooks.slack.com%2Fx"))
		Expect(err).NotTo(HaveOccurred())
		Expect(cmd.TriggerID).To(BeEmpty())
		Expect(cmd.Text).To(Equal("hello"))
		Expect(cmd.ResponseURL).To(Equal("https://hooks.slack.com/x"))
	})

	It("rejects a malformed form", func() {
		_, err := dto.DecodeSlashCommand([]byte("trigger_id=%zz"))
		Expect(errors.Is(err, dto.ErrInvalidPayload)).To(BeTrue())
	})
})

var _ = Describe("DecodeInteraction", func() {
	It("decodes a complete submission", func() {
		body := interactionBody(submission(merge(
			textValue("title_b", "title", "  Bug X  "),
			textValue("desc_b", "desc", "repro steps"),
			textValue("labels_b", "labels", "security, bug,, security"),
			map[string]any{"ai_b": map[string]any{"ai": map[string]any{
				"type":             "checkboxes",
				"selected_options": []any{map[string]any{"value": "ai_tips", "text": map[string]any{"type": "plain_text", "text": "Yes"}}},
			}}},
		)))

		interaction, err := dto.DecodeInteraction(body)
		Expect(err).NotTo(HaveOccurred())
		Expect(interaction).To(Equal(model.ViewSubmission{
			Title:       "Bug X",
			Description: "repro steps",
			Labels:      []string{"security", "bug"},
			AIRequested: true,
			CallbackID:  "create_issue_modal",
			Repo:        "acme/appsec",
			UserID:      "U123",
		}))
	})

	It("treats optional fields as absent", func() {
		body := interactionBody(submission(merge(
			textValue("title_b", "title", "Bug X"),
			textValue("desc_b", "desc", "repro steps"),
		)))

		interaction, err := dto.DecodeInteraction(body)
		Expect(err).NotTo(HaveOccurred())
		sub := interaction.(model.ViewSubmission)
		Expect(sub.Labels).To(BeEmpty())
		Expect(sub.AIRequested).To(BeFalse())
	})

	It("accepts the minimal payload shape without callback_id", func() {
		payload := map[string]any{
			"type": "view_submission",
			"view": map[string]any{"state": map[string]any{"values": merge(
				textValue("title_b", "title", "Bug X"),
				textValue("desc_b", "desc", "repro steps"),
			)}},
		}

		interaction, err := dto.DecodeInteraction(interactionBody(payload))
		Expect(err).NotTo(HaveOccurred())
		Expect(interaction.InteractionType()).To(Equal(model.InteractionViewSubmission))
	})

	It("fails closed on a missing title", func() {
		body := interactionBody(submission(textValue("desc_b", "desc", "repro steps")))

		interaction, err := dto.DecodeInteraction(body)
		Expect(interaction).To(BeNil())
		var fieldErr *dto.FieldError
		Expect(errors.As(err, &fieldErr)).To(BeTrue())
		Expect(fieldErr.BlockID).To(Equal("title_b"))
		Expect(errors.Is(err, dto.ErrMissingField)).To(BeTrue())
	})

	It("fails closed on a blank description", func() {
		body := interactionBody(submission(merge(
			textValue("title_b", "title", "Bug X"),
			textValue("desc_b", "desc", "   "),
		)))

		_, err := dto.DecodeInteraction(body)
		var fieldErr *dto.FieldError
		Expect(errors.As(err, &fieldErr)).To(BeTrue())
		Expect(fieldErr.BlockID).To(Equal("desc_b"))
	})

	It("fails closed when the view has no state", func() {
		payload := map[string]any{"type": "view_submission", "view": map[string]any{}}

		_, err := dto.DecodeInteraction(interactionBody(payload))
		Expect(errors.Is(err, dto.ErrMissingField)).To(BeTrue())
	})

	It("ignores unparseable private metadata", func() {
		payload := submission(merge(
			textValue("title_b", "title", "Bug X"),
			textValue("desc_b", "desc", "repro steps"),
		))
		payload["view"].(map[string]any)["private_metadata"] = "not json"

		interaction, err := dto.DecodeInteraction(interactionBody(payload))
		Expect(err).NotTo(HaveOccurred())
		Expect(interaction.(model.ViewSubmission).Repo).To(BeEmpty())
	})

	It("returns unknown interactions for other types", func() {
		interaction, err := dto.DecodeInteraction(interactionBody(map[string]any{"type": "block_actions"}))
		Expect(err).NotTo(HaveOccurred())
		Expect(interaction).To(Equal(model.UnknownInteraction{Type: "block_actions"}))
	})

	It("returns unknown interactions for other modals", func() {
		payload := map[string]any{
			"type": "view_submission",
			"view": map[string]any{"callback_id": "feedback_modal"},
		}

		interaction, err := dto.DecodeInteraction(interactionBody(payload))
		Expect(err).NotTo(HaveOccurred())
		Expect(interaction).To(Equal(model.UnknownInteraction{Type: "view_submission", CallbackID: "feedback_modal"}))
	})

	DescribeTable("invalid bodies",
		func(body string) {
			interaction, err := dto.DecodeInteraction([]byte(body))
			Expect(interaction).To(BeNil())
			Expect(errors.Is(err, dto.ErrInvalidPayload)).To(BeTrue())
		},
		Entry("no payload field", "foo=bar"),
		Entry("empty body", ""),
		Entry("payload is not json", "payload=%7Bnot-json"),
		Entry("broken form encoding", "payload=%zz"),
	)
})

var _ = Describe("ParseLabels", func() {
	DescribeTable("splits comma separated labels",
		func(raw string, expected []string) {
			Expect(dto.ParseLabels(raw)).To(Equal(expected))
		},
		Entry("empty", "", []string(nil)),
		Entry("single", "bug", []string{"bug"}),
		Entry("trims and drops blanks", " bug , ,security ", []string{"bug", "security"}),
		Entry("dedupes in order", "b,a,b", []string{"b", "a"}),
	)
})
