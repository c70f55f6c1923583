package catalog

// StepBlueprint is one email in a pre-built sequence, with bilingual
// subject and body and the delay relative to the previous step.
type StepBlueprint struct {
	DelayDays  int
	DelayHours int
	SubjectEN  string
	SubjectFR  string
	BodyEN     string
	BodyFR     string
}

// Blueprint is a pre-built sequence definition that can be instantiated
// into a stored sequence.
type Blueprint struct {
	Name        string
	Description string
	TriggerType string
	Steps       []StepBlueprint
}

// Blueprints holds the built-in sequence templates keyed by template key.
var Blueprints = map[string]Blueprint{
	"welcome": {
		Name:        "Welcome Sequence",
		Description: "Introduce new leads to Rusinga International ecosystem",
		TriggerType: "new_lead",
		Steps: []StepBlueprint{
			{
				DelayDays:  0,
				DelayHours: 1,
				SubjectEN:  "Welcome to Rusinga International! 🎉",
				SubjectFR:  "Bienvenue chez Rusinga International! 🎉",
				BodyEN: `
          <h2>Welcome, {{firstName}}!</h2>
          <p>Thank you for your interest in our services. We're excited to help you achieve your goals.</p>
          <p>Our ecosystem includes:</p>
          <ul>
            <li><strong>Lingueefy</strong> - Master French or English for the Canadian Public Service</li>
            <li><strong>RusingAcademy</strong> - Corporate language training programs</li>
            <li><strong>Barholex Media</strong> - Creative digital solutions</li>
          </ul>
          <p>A member of our team will reach out shortly to discuss your needs.</p>
        `,
				BodyFR: `
          <h2>Bienvenue, {{firstName}}!</h2>
          <p>Merci de votre intérêt pour nos services. Nous sommes ravis de vous aider à atteindre vos objectifs.</p>
          <p>Notre écosystème comprend:</p>
          <ul>
            <li><strong>Lingueefy</strong> - Maîtrisez le français ou l'anglais pour la fonction publique canadienne</li>
            <li><strong>RusingAcademy</strong> - Programmes de formation linguistique en entreprise</li>
            <li><strong>Barholex Media</strong> - Solutions numériques créatives</li>
          </ul>
          <p>Un membre de notre équipe vous contactera sous peu pour discuter de vos besoins.</p>
        `,
			},
			{
				DelayDays:  3,
				DelayHours: 0,
				SubjectEN:  "How can we help you succeed?",
				SubjectFR:  "Comment pouvons-nous vous aider à réussir?",
				BodyEN: `
          <h2>Hi {{firstName}},</h2>
          <p>We wanted to follow up and learn more about your goals.</p>
          <p>Whether you're preparing for SLE exams, need corporate training, or require creative services, we have solutions tailored to your needs.</p>
          <p><strong>Ready to take the next step?</strong></p>
          <p><a href="{{ecosystemUrl}}" style="background: #009688; color: white; padding: 12px 24px; text-decoration: none; border-radius: 8px;">Explore Our Services</a></p>
        `,
				BodyFR: `
          <h2>Bonjour {{firstName}},</h2>
          <p>Nous voulions faire un suivi et en apprendre davantage sur vos objectifs.</p>
          <p>Que vous prépariez les examens ELS, ayez besoin de formation en entreprise ou de services créatifs, nous avons des solutions adaptées à vos besoins.</p>
          <p><strong>Prêt à passer à l'étape suivante?</strong></p>
          <p><a href="{{ecosystemUrl}}" style="background: #009688; color: white; padding: 12px 24px; text-decoration: none; border-radius: 8px;">Découvrir nos services</a></p>
        `,
			},
			{
				DelayDays:  7,
				DelayHours: 0,
				SubjectEN:  "Special offer for you, {{firstName}}",
				SubjectFR:  "Offre spéciale pour vous, {{firstName}}",
				BodyEN: `
          <h2>{{firstName}}, we have something special for you!</h2>
          <p>As a thank you for your interest, we'd like to offer you a <strong>free consultation</strong> to discuss your needs and how we can help.</p>
          <p>During this 30-minute call, we'll:</p>
          <ul>
            <li>Understand your specific goals</li>
            <li>Recommend the best solution for your situation</li>
            <li>Answer any questions you have</li>
          </ul>
          <p><a href="{{bookingUrl}}" style="background: #009688; color: white; padding: 12px 24px; text-decoration: none; border-radius: 8px;">Book Your Free Consultation</a></p>
        `,
				BodyFR: `
          <h2>{{firstName}}, nous avons quelque chose de spécial pour vous!</h2>
          <p>Pour vous remercier de votre intérêt, nous aimerions vous offrir une <strong>consultation gratuite</strong> pour discuter de vos besoins.</p>
          <p>Lors de cet appel de 30 minutes, nous allons:</p>
          <ul>
            <li>Comprendre vos objectifs spécifiques</li>
            <li>Recommander la meilleure solution pour votre situation</li>
            <li>Répondre à toutes vos questions</li>
          </ul>
          <p><a href="{{bookingUrl}}" style="background: #009688; color: white; padding: 12px 24px; text-decoration: none; border-radius: 8px;">Réserver votre consultation gratuite</a></p>
        `,
			},
		},
	},
	"nurture": {
		Name:        "Nurture Sequence",
		Description: "Keep warm leads engaged over time",
		TriggerType: "manual",
		Steps: []StepBlueprint{
			{
				DelayDays:  0,
				DelayHours: 0,
				SubjectEN:  "Helpful resources for your language journey",
				SubjectFR:  "Ressources utiles pour votre parcours linguistique",
				BodyEN: `
          <h2>Hi {{firstName}},</h2>
          <p>We thought you might find these resources helpful:</p>
          <ul>
            <li>📚 Free SLE preparation guide</li>
            <li>🎯 Tips for improving oral communication</li>
            <li>📝 Common mistakes to avoid in written exams</li>
          </ul>
          <p>Let us know if you have any questions!</p>
        `,
				BodyFR: `
          <h2>Bonjour {{firstName}},</h2>
          <p>Nous avons pensé que ces ressources pourraient vous être utiles:</p>
          <ul>
            <li>📚 Guide gratuit de préparation ELS</li>
            <li>🎯 Conseils pour améliorer la communication orale</li>
            <li>📝 Erreurs courantes à éviter dans les examens écrits</li>
          </ul>
          <p>N'hésitez pas à nous contacter si vous avez des questions!</p>
        `,
			},
			{
				DelayDays:  14,
				DelayHours: 0,
				SubjectEN:  "Success story: How Marie achieved her CBC",
				SubjectFR:  "Histoire de réussite: Comment Marie a obtenu son CBC",
				BodyEN: `
          <h2>{{firstName}}, meet Marie!</h2>
          <p>Marie was in a similar situation to yours. She needed to achieve CBC level for a promotion but was struggling with oral communication.</p>
          <p>After working with one of our expert coaches for just 3 months, she not only passed her SLE but exceeded her target!</p>
          <blockquote>"The personalized approach made all the difference. I finally felt confident speaking French in professional settings."</blockquote>
          <p><strong>Ready to write your own success story?</strong></p>
        `,
				BodyFR: `
          <h2>{{firstName}}, rencontrez Marie!</h2>
          <p>Marie était dans une situation similaire à la vôtre. Elle devait atteindre le niveau CBC pour une promotion mais avait des difficultés avec la communication orale.</p>
          <p>Après avoir travaillé avec l'un de nos coachs experts pendant seulement 3 mois, elle a non seulement réussi son ELS mais a dépassé son objectif!</p>
          <blockquote>"L'approche personnalisée a fait toute la différence. Je me sens enfin confiante pour parler français dans des contextes professionnels."</blockquote>
          <p><strong>Prêt à écrire votre propre histoire de réussite?</strong></p>
        `,
			},
		},
	},
	"reengage": {
		Name:        "Re-engagement Sequence",
		Description: "Win back cold leads",
		TriggerType: "manual",
		Steps: []StepBlueprint{
			{
				DelayDays:  0,
				DelayHours: 0,
				SubjectEN:  "We miss you, {{firstName}}!",
				SubjectFR:  "Vous nous manquez, {{firstName}}!",
				BodyEN: `
          <h2>Hi {{firstName}},</h2>
          <p>It's been a while since we last connected. We wanted to check in and see if your language learning goals have changed.</p>
          <p>A lot has happened since then:</p>
          <ul>
            <li>✨ New AI-powered practice tools</li>
            <li>👥 Expanded coach network</li>
            <li>💰 New flexible pricing options</li>
          </ul>
          <p>Would you like to reconnect?</p>
        `,
				BodyFR: `
          <h2>Bonjour {{firstName}},</h2>
          <p>Cela fait un moment que nous n'avons pas échangé. Nous voulions prendre de vos nouvelles et voir si vos objectifs d'apprentissage ont changé.</p>
          <p>Beaucoup de choses se sont passées depuis:</p>
          <ul>
            <li>✨ Nouveaux outils de pratique alimentés par l'IA</li>
            <li>👥 Réseau de coachs élargi</li>
            <li>💰 Nouvelles options de tarification flexibles</li>
          </ul>
          <p>Souhaitez-vous reprendre contact?</p>
        `,
			},
			{
				DelayDays:  7,
				DelayHours: 0,
				SubjectEN:  "Last chance: Special offer expires soon",
				SubjectFR:  "Dernière chance: Offre spéciale expire bientôt",
				BodyEN: `
          <h2>{{firstName}}, don't miss out!</h2>
          <p>We'd love to have you back. As a special offer, we're providing:</p>
          <p style="font-size: 24px; text-align: center; color: #009688;"><strong>20% OFF</strong> your first session</p>
          <p>This offer expires in 48 hours. Ready to get started?</p>
        `,
				BodyFR: `
          <h2>{{firstName}}, ne manquez pas cette opportunité!</h2>
          <p>Nous serions ravis de vous revoir. En tant qu'offre spéciale, nous offrons:</p>
          <p style="font-size: 24px; text-align: center; color: #009688;"><strong>20% DE RÉDUCTION</strong> sur votre première session</p>
          <p>Cette offre expire dans 48 heures. Prêt à commencer?</p>
        `,
			},
		},
	},
}

// Get returns the blueprint for a template key.
func Get(key string) (Blueprint, bool) {
	bp, ok := Blueprints[key]
	return bp, ok
}

// Keys lists the available template keys in a stable order.
func Keys() []string {
	return []string{"welcome", "nurture", "reengage"}
}
