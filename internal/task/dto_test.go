package task_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/locpham246/task-manager/internal/task"
)

var _ = Describe("Task DTOs", func() {
	Describe("ParseCreateTaskDTO", func() {
		It("defaults status to pending and priority to medium", func() {
			dto, err := task.ParseCreateTaskDTO(strings.NewReader(`{"title":"New task"}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(dto.Status).To(Equal(task.StatusPending))
			Expect(dto.Priority).To(Equal(task.PriorityMedium))
		})

		It("requires a title", func() {
			_, err := task.ParseCreateTaskDTO(strings.NewReader(`{"title":"  "}`))
			Expect(err).To(HaveOccurred())
		})

		It("rejects unknown status values", func() {
			_, err := task.ParseCreateTaskDTO(strings.NewReader(`{"title":"x","status":"archived"}`))
			Expect(err).To(HaveOccurred())
		})

		It("accepts Google Docs product links", func() {
			body := `{"title":"x","documentation_links":[
				"https://docs.google.com/document/d/abc/edit",
				"https://docs.google.com/spreadsheets/d/def/edit",
				"https://docs.google.com/presentation/d/ghi/edit",
				"https://docs.google.com/forms/d/jkl/viewform"]}`
			_, err := task.ParseCreateTaskDTO(strings.NewReader(body))
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects links outside docs.google.com", func() {
			body := `{"title":"x","documentation_links":["https://evil.example.com/document/d/abc"]}`
			_, err := task.ParseCreateTaskDTO(strings.NewReader(body))
			Expect(err).To(HaveOccurred())
		})

		It("rejects docs.google.com links to other products", func() {
			body := `{"title":"x","documentation_links":["https://docs.google.com/maps/place/x"]}`
			_, err := task.ParseCreateTaskDTO(strings.NewReader(body))
			Expect(err).To(HaveOccurred())
		})

		It("rejects plain http links", func() {
			body := `{"title":"x","documentation_links":["http://docs.google.com/document/d/abc"]}`
			_, err := task.ParseCreateTaskDTO(strings.NewReader(body))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ParseUpdateTaskDTO", func() {
		It("rejects an empty update", func() {
			_, err := task.ParseUpdateTaskDTO(strings.NewReader(`{}`))
			Expect(err).To(HaveOccurred())
		})

		It("lists exactly the present fields", func() {
			dto, err := task.ParseUpdateTaskDTO(strings.NewReader(`{"status":"done","description":"d"}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(dto.RequestedFields()).To(ConsistOf("status", "description"))
		})

		It("rejects an explicit empty title", func() {
			_, err := task.ParseUpdateTaskDTO(strings.NewReader(`{"title":""}`))
			Expect(err).To(HaveOccurred())
		})
	})
})
