// internal/classify/patterns.go
package classify

// Pattern asocia un sufijo de hostname CNAME con el servicio que lo opera.
// Las tablas son heurísticas best-effort, no una identificación verificada.
type Pattern struct {
	Suffix      string
	Name        string
	Category    string
	Description string
}

// servicePatterns es la tabla ordenada de clasificación por sufijo CNAME.
// Los sufijos más específicos van antes que sus prefijos (elb.amazonaws.com
// antes que amazonaws.com); el matcher elige el match más largo.
var servicePatterns = []Pattern{
	// CDN
	{"cloudfront.net", "AWS CloudFront", "cdn", "Amazon CloudFront CDN"},
	{"fastly.net", "Fastly", "cdn", "Fastly CDN"},
	{"fastlylb.net", "Fastly", "cdn", "Fastly load balancer"},
	{"akamaiedge.net", "Akamai", "cdn", "Akamai edge network"},
	{"akadns.net", "Akamai", "cdn", "Akamai DNS"},
	{"edgekey.net", "Akamai", "cdn", "Akamai edge network"},
	{"edgesuite.net", "Akamai", "cdn", "Akamai edge network"},
	{"azureedge.net", "Microsoft Azure", "cdn", "Azure CDN"},
	{"cdn.cloudflare.net", "Cloudflare", "cdn", "Cloudflare CDN"},
	{"b-cdn.net", "Bunny CDN", "cdn", "Bunny CDN"},

	// Cloud
	{"elb.amazonaws.com", "AWS", "infrastructure", "AWS Elastic Load Balancer"},
	{"awsglobalaccelerator.com", "AWS", "infrastructure", "AWS Global Accelerator"},
	{"s3.amazonaws.com", "AWS", "cloud", "Amazon S3"},
	{"amazonaws.com", "AWS", "cloud", "Amazon Web Services"},
	{"azurewebsites.net", "Microsoft Azure", "cloud", "Azure App Service"},
	{"trafficmanager.net", "Microsoft Azure", "infrastructure", "Azure Traffic Manager"},
	{"cloudapp.azure.com", "Microsoft Azure", "cloud", "Azure Cloud Services"},
	{"blob.core.windows.net", "Microsoft Azure", "cloud", "Azure Blob Storage"},
	{"ghs.googlehosted.com", "Google Cloud", "cloud", "Google hosted services"},
	{"googlehosted.com", "Google Cloud", "cloud", "Google hosted services"},
	{"storage.googleapis.com", "Google Cloud", "cloud", "Google Cloud Storage"},
	{"appspot.com", "Google Cloud", "cloud", "Google App Engine"},
	{"run.app", "Google Cloud", "cloud", "Google Cloud Run"},
	{"workers.dev", "Cloudflare", "cloud", "Cloudflare Workers"},
	{"pages.dev", "Cloudflare", "hosting", "Cloudflare Pages"},

	// Hosting / PaaS
	{"herokuapp.com", "Heroku", "hosting", "Heroku app"},
	{"herokudns.com", "Heroku", "hosting", "Heroku custom domain"},
	{"github.io", "GitHub Pages", "hosting", "GitHub Pages site"},
	{"githubusercontent.com", "GitHub Pages", "hosting", "GitHub user content"},
	{"netlify.app", "Netlify", "hosting", "Netlify site"},
	{"netlify.com", "Netlify", "hosting", "Netlify site"},
	{"vercel.app", "Vercel", "hosting", "Vercel deployment"},
	{"vercel-dns.com", "Vercel", "hosting", "Vercel custom domain"},
	{"wpengine.com", "WP Engine", "hosting", "WP Engine managed WordPress"},
	{"pantheonsite.io", "Pantheon", "hosting", "Pantheon site"},
	{"wixdns.net", "Wix", "hosting", "Wix site"},
	{"squarespace.com", "Squarespace", "hosting", "Squarespace site"},

	// SaaS
	{"myshopify.com", "Shopify", "saas", "Shopify storefront"},
	{"shopify.com", "Shopify", "saas", "Shopify storefront"},
	{"hubspot.net", "HubSpot", "saas", "HubSpot hosted pages"},
	{"zendesk.com", "Zendesk", "saas", "Zendesk help center"},
	{"force.com", "Salesforce", "saas", "Salesforce platform"},
	{"salesforce.com", "Salesforce", "saas", "Salesforce platform"},
	{"helpscoutdocs.com", "Help Scout", "saas", "Help Scout docs"},
	{"statuspage.io", "Statuspage", "saas", "Atlassian Statuspage"},
	{"readthedocs.io", "Read the Docs", "saas", "Read the Docs project"},

	// Email
	{"sendgrid.net", "SendGrid", "email", "SendGrid email delivery"},
	{"mailgun.org", "Mailgun", "email", "Mailgun email delivery"},
	{"pardot.com", "Pardot", "email", "Salesforce Pardot"},
	{"mktoweb.com", "Marketo", "email", "Marketo landing pages"},
}

// vendorFragment mapea fragmentos de nombre de organización (case-insensitive)
// a una etiqueta de vendor cerrada.
type vendorFragment struct {
	Fragment string
	Vendor   string
	Category string
}

// vendorFragments se evalúa en orden; el primer fragmento contenido en el
// string de organización gana.
var vendorFragments = []vendorFragment{
	{"amazon", "AWS", "cloud"},
	{"aws", "AWS", "cloud"},
	{"google", "Google Cloud", "cloud"},
	{"microsoft", "Microsoft Azure", "cloud"},
	{"azure", "Microsoft Azure", "cloud"},
	{"cloudflare", "Cloudflare", "cdn"},
	{"akamai", "Akamai", "cdn"},
	{"fastly", "Fastly", "cdn"},
	{"digitalocean", "DigitalOcean", "hosting"},
	{"hetzner", "Hetzner", "hosting"},
	{"ovh", "OVH", "hosting"},
	{"linode", "Linode", "hosting"},
	{"vultr", "Vultr", "hosting"},
	{"oracle", "Oracle Cloud", "cloud"},
	{"alibaba", "Alibaba Cloud", "cloud"},
	{"tencent", "Tencent Cloud", "cloud"},
	{"github", "GitHub", "hosting"},
	{"salesforce", "Salesforce", "saas"},
	{"heroku", "Heroku", "hosting"},
}
