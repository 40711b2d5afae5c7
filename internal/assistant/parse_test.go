package assistant

import (
	"github.com/frahmantamala/crm-assistant/internal/core/action"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("parseCompletion", func() {
	It("strips a markdown fence", func() {
		Expect(cleanMarkdownWrapper("```json\n{\"message\":\"hi\"}\n```")).To(Equal(`{"message":"hi"}`))
		Expect(cleanMarkdownWrapper("  plain  ")).To(Equal("plain"))
	})

	It("decodes message and actions", func() {
		reply, err := parseCompletion(`{"message":"Opening contacts","actions":[{"type":"navigate","label":"Contacts","path":"/contacts"}]}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Message).To(Equal("Opening contacts"))
		Expect(reply.Actions).To(Equal([]action.Action{action.Navigate("Contacts", "/contacts")}))
	})

	It("repairs a trailing comma", func() {
		reply, err := parseCompletion(`{"message": "Hi there", "actions": [],}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Message).To(Equal("Hi there"))
		Expect(reply.Actions).To(BeEmpty())
	})

	It("keeps prose as the message", func() {
		reply, err := parseCompletion("You have 3 clients.")
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Message).To(Equal("You have 3 clients."))
		Expect(reply.Actions).NotTo(BeNil())
		Expect(reply.Actions).To(BeEmpty())
	})

	It("keeps JSON it cannot decode as the message", func() {
		reply, err := parseCompletion(`{"message": 42, "actions": "none"}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Message).To(Equal(`{"message": 42, "actions": "none"}`))
		Expect(reply.Actions).To(BeEmpty())
	})

	It("drops unknown action types and caps the list", func() {
		reply, err := parseCompletion(`{"message":"ok","actions":[
			{"type":"delete_everything"},
			{"type":"ui","label":"1"},{"type":"ui","label":"2"},{"type":"ui","label":"3"},
			{"type":"ui","label":"4"},{"type":"ui","label":"5"},{"type":"ui","label":"6"}]}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Actions).To(HaveLen(5))
		Expect(reply.Actions[0].Label).To(Equal("1"))
	})

	It("rejects an empty message", func() {
		_, err := parseCompletion(`{"message":"  ","actions":[]}`)
		Expect(err).To(HaveOccurred())
		_, err = parseCompletion("```json\n```")
		Expect(err).To(HaveOccurred())
	})
})
