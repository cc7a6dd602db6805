package validator

// Lists holds the static domain and local-part membership tables the
// classifier consults. They are read-only after construction and
// injectable so tests can substitute small fixture sets.
type Lists struct {
	Disposable   map[string]struct{}
	Invalid      map[string]struct{}
	Free         map[string]struct{}
	Trusted      map[string]struct{}
	CommonTLDs   map[string]struct{}
	RolePrefixes []string
}

func toSet(items ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// DefaultLists returns the production membership tables.
func DefaultLists() *Lists {
	return &Lists{
		Disposable: toSet(
			// Throwaway services
			"mailinator.com", "guerrillamail.com", "guerrillamail.net", "guerrillamail.org",
			"guerrillamail.biz", "guerrillamail.de", "10minutemail.com", "10minutemail.net",
			"10minutemail.org", "temp-mail.org", "temp-mail.io", "temp-mail.net", "temp-mail.ru",
			"tempmail.com", "tempmailo.com", "throwawaymail.com", "dispostable.com", "getnada.com",
			"maildrop.cc", "mailnesia.com", "mailcatch.com", "emailondeck.com", "fakeinbox.com",
			"mintemail.com", "sharklasers.com", "guerrillamailblock.com", "spam4.me", "spamgourmet.com",
			"spamavert.com", "trashmail.com", "trashmail.de", "trashmail.net", "incognitomail.org",
			"mailnull.com", "yopmail.com", "yopmail.net", "yopmail.fr", "yopmail.org",
			"cool.fr.nf", "jetable.fr.nf", "nomail.pw", "mailtemp.info", "mailtemp.online",
			"mailtemp.site", "mailtemp.me", "example.com", "example.net", "example.org",
			"test.com", "testmail.com", "devnullmail.com", "null.net", "fakeemail.com",
			"emailfake.com", "mail.ru.temp", "mailtemp.ru", "tempmail.pl", "tempmail.de",
			"tempmail.fr", "mail-temp.cz", "mail-temp.eu",
			// Legacy ISP and regional providers
			"aol.com", "comcast.net", "verizon.net", "att.net", "sbcglobal.net", "cox.net",
			"charter.net", "bellsouth.net", "earthlink.net", "web.de", "gmx.de", "gmx.net",
			"t-online.de", "freenet.de", "orange.fr", "laposte.net", "wanadoo.fr", "free.fr",
			"sfr.fr", "libero.it", "virgilio.it", "alice.it", "tin.it", "terra.es",
			"telefonica.net", "ya.com", "ziggo.nl", "kpnmail.nl", "btinternet.com", "sky.com",
			"sky.co.uk", "virginmedia.com", "talktalk.net", "ntlworld.com", "blueyonder.co.uk",
			"mail.ru", "yandex.ru", "yandex.com", "rambler.ru", "bk.ru", "inbox.ru", "list.ru",
			"qq.com", "163.com", "126.com", "yeah.net", "sina.com", "sohu.com", "yahoo.co.jp",
			"ezweb.ne.jp", "docomo.ne.jp", "softbank.ne.jp", "au.com", "naver.com", "daum.net",
			"hanmail.net", "kakao.com", "uol.com.br", "bol.com.br", "terra.com.br", "ig.com.br",
			"prodigy.net.mx", "telmexmail.com", "latinmail.com", "sympatico.ca", "bell.net",
			"rogers.com", "shaw.ca", "fastmail.com", "zoznam.sk", "seznam.cz", "tuta.com",
			"posteo.de",
		),
		Invalid: toSet(
			// URL shorteners
			"gl.com", "goo.gl", "bit.ly", "tinyurl.com", "t.co", "ow.ly", "is.gd", "buff.ly",
			// Test/example domains (RFC 2606)
			"test.com", "example.com", "example.org", "example.net", "test.org", "test.net",
			"localhost", "localhost.localdomain", "invalid.com", "invalid.org",
			// Obviously fake
			"fake.com", "fake.org", "fake.net", "none.com", "null.com", "void.com",
			"noemail.com", "noreply.com", "nowhere.com",
			// Random/test patterns
			"abc.com", "xyz.com", "aaa.com", "bbb.com", "ccc.com", "ddd.com",
			"asdf.com", "qwerty.com", "temp.com", "no.com", "na.com", "xx.com",
			"123.com", "1234.com", "mail.co",
			// Generic placeholders
			"domain.com", "email.com", "website.com", "business.com",
			"yourcompany.com", "yourdomain.com", "yoursite.com", "mycompany.com",
			"sample.com", "demo.com", "testing.com",
		),
		Free: toSet(
			"gmail.com", "yahoo.com", "hotmail.com", "outlook.com", "live.com",
			"aol.com", "icloud.com", "mail.com", "protonmail.com", "zoho.com",
			"yandex.com", "gmx.com", "inbox.com", "fastmail.com", "tutanota.com",
			"rediffmail.com",
		),
		Trusted: toSet(
			"microsoft.com", "google.com", "apple.com", "amazon.com",
			"ibm.com", "oracle.com", "salesforce.com", "adobe.com",
		),
		CommonTLDs: toSet(
			"com", "org", "net", "edu", "gov", "mil", "int",
			"co", "io", "ai", "app", "dev", "tech", "online", "store", "shop",
			"in", "ie", "at", "ch", "pl", "se", "no", "dk", "fi", "cz", "pt", "gr",
			"hu", "ro", "bg", "hr", "sk", "si", "lt", "lv", "ee", "ua", "by",
			"info", "biz", "name", "pro", "mobi", "tel", "asia", "eu",
		),
		RolePrefixes: []string{
			"admin", "administrator", "info", "contact", "support", "sales",
			"help", "webmaster", "postmaster", "hostmaster", "abuse", "noreply",
			"no-reply", "marketing", "billing", "accounts", "hr", "jobs",
			"careers", "press", "media", "team", "hello", "office",
		},
	}
}

// DomainClass categorizes a domain after the membership and structural
// checks. Known/free/trusted/plausible pass; the rest hard-reject.
type DomainClass string

const (
	DomainKnownProvider DomainClass = "known-provider"
	DomainBlacklisted   DomainClass = "blacklisted-invalid"
	DomainDisposable    DomainClass = "disposable"
	DomainPlausible     DomainClass = "unknown-plausible"
	DomainImplausible   DomainClass = "unknown-implausible"
)

// domainCheck is the classifier verdict consumed by the syntax validator.
type domainCheck struct {
	class   DomainClass
	valid   bool
	isKnown bool
	reason  string // blacklisted | disposable | too_short | invalid_structure | unknown_tld
}

// IsKnownProvider reports whether the domain belongs to a recognized
// mail provider (free consumer or trusted enterprise).
func (l *Lists) IsKnownProvider(domain string) bool {
	if _, ok := l.Free[domain]; ok {
		return true
	}
	_, ok := l.Trusted[domain]
	return ok
}

func (l *Lists) IsDisposable(domain string) bool {
	_, ok := l.Disposable[domain]
	return ok
}

func (l *Lists) IsFree(domain string) bool {
	_, ok := l.Free[domain]
	return ok
}

func (l *Lists) IsTrusted(domain string) bool {
	_, ok := l.Trusted[domain]
	return ok
}
