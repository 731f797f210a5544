package chat_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/slack-go/slack"

	"basegraph.app/issuedesk/internal/service/chat"
)

var _ = Describe("SlackPlatform", func() {
	var (
		server   *httptest.Server
		requests chan *http.Request
		bodies   chan []byte
		status   int
		reply    string
	)

	BeforeEach(func() {
		requests = make(chan *http.Request, 4)
		bodies = make(chan []byte, 4)
		status = http.StatusOK
		reply = `{"ok":true}`

		server = httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			requests <- r
			bodies <- body
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(reply))
		}))
		DeferCleanup(server.Close)
	})

	newPlatform := func(hosts ...string) chat.Platform {
		p, err := chat.NewSlackPlatform(chat.SlackConfig{
			BotToken:         "xoxb-test",
			APIURL:           server.URL,
			ResponseURLHosts: hosts,
			HTTPClient:       server.Client(),
		})
		Expect(err).NotTo(HaveOccurred())
		return p
	}

	It("requires a bot token", func() {
		_, err := chat.NewSlackPlatform(chat.SlackConfig{})
		Expect(err).To(HaveOccurred())
	})

	Describe("OpenView", func() {
		It("calls views.open with the trigger id and the bot token", func() {
			p := newPlatform()
			view := slack.ModalViewRequest{
				Type:       slack.VTModal,
				CallbackID: "create_issue_modal",
				Title:      slack.NewTextBlockObject(slack.PlainTextType, "New issue", false, false),
			}

			Expect(p.OpenView(context.Background(), "trig-1", view)).To(Succeed())

			var r *http.Request
			Eventually(requests).Should(Receive(&r))
			Expect(r.URL.Path).To(Equal("/views.open"))
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer xoxb-test"))

			var body []byte
			Eventually(bodies).Should(Receive(&body))
			var sent map[string]any
			Expect(json.Unmarshal(body, &sent)).To(Succeed())
			Expect(sent).To(HaveKeyWithValue("trigger_id", "trig-1"))
			Expect(sent["view"]).To(HaveKeyWithValue("callback_id", "create_issue_modal"))
		})

		It("returns an error when slack answers ok=false", func() {
			reply = `{"ok":false,"error":"expired_trigger_id"}`
			p := newPlatform()

			err := p.OpenView(context.Background(), "trig-1", slack.ModalViewRequest{Type: slack.VTModal})
			Expect(err).To(MatchError(ContainSubstring("expired_trigger_id")))
		})
	})

	Describe("PostResponse", func() {
		var host string

		BeforeEach(func() {
			u, err := url.Parse(server.URL)
			Expect(err).NotTo(HaveOccurred())
			host = u.Hostname()
		})

		It("posts an ephemeral message to an allowed response url", func() {
			p := newPlatform(host)
			msg := &slack.WebhookMessage{Text: "hi", ResponseType: slack.ResponseTypeEphemeral}

			Expect(p.PostResponse(context.Background(), server.URL+"/commands/T1/1/abc", msg)).To(Succeed())

			var r *http.Request
			Eventually(requests).Should(Receive(&r))
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.URL.Path).To(Equal("/commands/T1/1/abc"))

			var body []byte
			Eventually(bodies).Should(Receive(&body))
			var sent map[string]any
			Expect(json.Unmarshal(body, &sent)).To(Succeed())
			Expect(sent).To(HaveKeyWithValue("text", "hi"))
			Expect(sent).To(HaveKeyWithValue("response_type", "ephemeral"))
		})

		It("refuses hosts outside the allow list without sending anything", func() {
			p := newPlatform("hooks.slack.com")

			err := p.PostResponse(context.Background(), server.URL+"/x", &slack.WebhookMessage{Text: "hi"})
			Expect(err).To(MatchError(chat.ErrResponseURLNotAllowed))
			Consistently(requests, 50*time.Millisecond).ShouldNot(Receive())
		})

		It("accepts any https host when no allow list is configured", func() {
			p := newPlatform()

			Expect(p.PostResponse(context.Background(), server.URL+"/x", &slack.WebhookMessage{Text: "hi"})).To(Succeed())
			Eventually(requests).Should(Receive())
		})

		DescribeTable("refuses plain http without sending anything",
			func(hosts []string) {
				p := newPlatform(hosts...)
				plain := strings.Replace(server.URL, "https://", "http://", 1) + "/x"

				err := p.PostResponse(context.Background(), plain, &slack.WebhookMessage{Text: "hi"})
				Expect(err).To(MatchError(chat.ErrResponseURLNotAllowed))
				Consistently(requests, 50*time.Millisecond).ShouldNot(Receive())
			},
			Entry("without an allow list", nil),
			Entry("for an allowed host", []string{"127.0.0.1"}),
		)

		It("reports a non-2xx answer as an error", func() {
			status = http.StatusInternalServerError
			p := newPlatform(host)

			err := p.PostResponse(context.Background(), server.URL+"/x", &slack.WebhookMessage{Text: "hi"})
			Expect(err).To(HaveOccurred())
			Expect(err).NotTo(MatchError(chat.ErrResponseURLNotAllowed))
		})
	})
})
