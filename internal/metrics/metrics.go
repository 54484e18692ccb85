// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package metrics collects Prometheus counters for auth events.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records auth lifecycle events.
type Collector struct {
	registrations prometheus.Counter
	verifications prometheus.Counter
	logins        *prometheus.CounterVec
	refreshes     *prometheus.CounterVec
	passwordReset prometheus.Counter
	emailsSent    *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atelier_registrations_total",
			Help: "Completed user registrations.",
		}),
		verifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atelier_email_verifications_total",
			Help: "Completed two-step email verifications.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atelier_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atelier_token_refreshes_total",
			Help: "Refresh-token rotations by outcome.",
		}, []string{"outcome"}),
		passwordReset: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atelier_password_resets_total",
			Help: "Completed password resets (both flows).",
		}),
		emailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atelier_emails_sent_total",
			Help: "Transactional emails by kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		c.registrations,
		c.verifications,
		c.logins,
		c.refreshes,
		c.passwordReset,
		c.emailsSent,
	)

	return c
}

func (c *Collector) RecordRegistration()          { c.registrations.Inc() }
func (c *Collector) RecordVerification()          { c.verifications.Inc() }
func (c *Collector) RecordLogin(outcome string)   { c.logins.WithLabelValues(outcome).Inc() }
func (c *Collector) RecordRefresh(outcome string) { c.refreshes.WithLabelValues(outcome).Inc() }
func (c *Collector) RecordPasswordReset()         { c.passwordReset.Inc() }
func (c *Collector) RecordEmailSent(kind string)  { c.emailsSent.WithLabelValues(kind).Inc() }

// Handler returns the scrape handler for the gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
