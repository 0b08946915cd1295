package render

// builtinTemplates keeps the generator functional when no template directory
// is configured. A project template with the same name shadows the builtin.
var builtinTemplates = map[string]string{
	"layout.html": `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ title }}{% if site_name %} · {{ site_name }}{% endif %}</title>
  {% if description %}<meta name="description" content="{{ description }}">{% endif %}
  {% if canonical %}<link rel="canonical" href="{{ canonical }}">{% endif %}
</head>
<body>
<header>
  <a href="{{ base_url }}/">{{ site_name|default:"Articles" }}</a>
</header>
<main>
{{ content|safe }}
</main>
</body>
</html>
`,

	"article.html": `<article>
  <header>
    <h1>{{ article.title }}</h1>
    <p class="meta">
      {% if article.written_at %}<time datetime="{{ article.written_at|date:"2006-01-02" }}">{{ article.written_at|date:"January 2, 2006" }}</time>{% endif %}
      {% if article.reading_time %}<span>{{ article.reading_time }} min read</span>{% endif %}
      {% if article.category %}<a href="{{ base_url }}/categories/{{ article.category }}/">{{ article.category }}</a>{% endif %}
    </p>
  </header>
  {{ article.body_html|safe }}
  {% if article.tags %}
  <ul class="tags">
    {% for tag in article.tags %}<li><a href="{{ base_url }}/tags/{{ tag }}/">{{ tag }}</a></li>{% endfor %}
  </ul>
  {% endif %}
  {% if related %}
  <aside class="related">
    <h2>Related</h2>
    <ul>
      {% for item in related %}<li><a href="{{ item.url }}">{{ item.title }}</a></li>{% endfor %}
    </ul>
  </aside>
  {% endif %}
</article>
`,

	"list.html": `<section>
  <h1>{{ title }}</h1>
  {% if description %}<p>{{ description }}</p>{% endif %}
  <ul class="articles">
    {% for item in items %}
    <li>
      <a href="{{ item.url }}">{{ item.title }}</a>
      {% if item.written_at %}<time datetime="{{ item.written_at|date:"2006-01-02" }}">{{ item.written_at|date:"Jan 2, 2006" }}</time>{% endif %}
      {% if item.summary %}<p>{{ item.summary }}</p>{% endif %}
    </li>
    {% endfor %}
  </ul>
</section>
`,

	"home.html": `<section>
  <h1>{{ site_name|default:"Latest articles" }}</h1>
  <ul class="articles">
    {% for item in items %}
    <li>
      <a href="{{ item.url }}">{{ item.title }}</a>
      {% if item.summary %}<p>{{ item.summary }}</p>{% endif %}
    </li>
    {% endfor %}
  </ul>
</section>
`,

	"archive.html": `<section>
  <h1>Archive</h1>
  {% for year in years %}
  <h2>{{ year.year }}</h2>
  {% for month in year.months %}
  <h3>{{ month.label }}</h3>
  <ul>
    {% for item in month.items %}<li><a href="{{ item.url }}">{{ item.title }}</a></li>{% endfor %}
  </ul>
  {% endfor %}
  {% endfor %}
</section>
`,
}
